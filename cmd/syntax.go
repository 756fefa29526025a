package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/mattsolo1/grove-core/cli"
	"github.com/spf13/cobra"
)

func NewSyntaxCmd() *cobra.Command {
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "syntax",
		Short: "Print the try syntax for a selection without the chooser",
		Long: `Build the selection from the job table and the selection flags and print
the resulting try message. With --json the structured request is printed.

Examples:
  trychooser syntax -b do -p all -u mochitest-1,xpcshell
  trychooser syntax --jobs jobs.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyntax(cmd, &sel)
		},
	}
	sel.register(cmd.Flags())
	return cmd
}

func runSyntax(cmd *cobra.Command, sel *selectionFlags) error {
	cfg, err := loadTryConfig(".")
	if err != nil {
		return err
	}
	t, doc, err := loadSelection(cfg, sel)
	if err != nil {
		return err
	}

	req := doc.Generator().Request(t)
	out := cmd.OutOrStdout()

	if cli.GetOptions(cmd).JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Message string `json:"message"`
			Request any    `json:"request"`
		}{req.Message(), req})
	}

	fmt.Fprintln(out, req.Message())
	return nil
}
