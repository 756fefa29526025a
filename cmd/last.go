package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-try/pkg/jobs"
	"github.com/mattsolo1/grove-try/pkg/state"
	"github.com/spf13/cobra"
)

// NewLastCmd creates the `last` command.
func NewLastCmd() *cobra.Command {
	var clearLast bool

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the last try push from this repository",
		Long: `Show the message and selection of the last push made with 'choose'.
'choose --last' and 'syntax --last' start from that selection.

Examples:
  trychooser last
  trychooser last --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLast(cmd, workingDir(), clearLast)
		},
	}
	cmd.Flags().BoolVar(&clearLast, "clear", false, "Forget the recorded push")
	return cmd
}

func runLast(cmd *cobra.Command, dir string, clearLast bool) error {
	out := cmd.OutOrStdout()

	if clearLast {
		if err := os.Remove(state.Path(dir)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear last push: %w", err)
		}
		fmt.Fprintln(out, "Cleared last push")
		return nil
	}

	st, err := state.Load(dir)
	if err != nil {
		return fmt.Errorf("get last push: %w", err)
	}

	if cli.GetOptions(cmd).JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(st)
	}

	if st.IsZero() {
		fmt.Fprintln(out, "No push recorded")
		return nil
	}

	jobsFile := st.JobsFile
	if jobsFile == "" {
		jobsFile = "built-in"
	}
	fmt.Fprintf(out, "Message:   %s\n", color.CyanString(st.Message))
	fmt.Fprintf(out, "Jobs:      %s\n", jobsFile)
	if !st.PushedAt.IsZero() {
		fmt.Fprintf(out, "Pushed at: %s\n", st.PushedAt.Local().Format("2006-01-02 15:04"))
	}
	if st.Selection != nil {
		sel, err := jobs.ExpandInitial(st.Selection)
		if err != nil {
			return fmt.Errorf("last selection: %w", err)
		}
		fmt.Fprintf(out, "Selection: %s\n", sel)
	}
	return nil
}
