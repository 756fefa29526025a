package main

import (
	"os"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-try/cmd"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"trychooser",
		"Choose try jobs and push them as try syntax",
	)

	rootCmd.AddCommand(cmd.NewChooseCmd())
	rootCmd.AddCommand(cmd.NewSyntaxCmd())
	rootCmd.AddCommand(cmd.NewAutotryCmd())
	rootCmd.AddCommand(cmd.NewParseCmd())
	rootCmd.AddCommand(cmd.NewJobsCmd())
	rootCmd.AddCommand(cmd.NewLastCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
