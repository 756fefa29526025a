package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattsolo1/grove-try/cmd/chooser_tui"
	"github.com/mattsolo1/grove-try/pkg/jobs"
	"github.com/mattsolo1/grove-try/pkg/push"
	"github.com/mattsolo1/grove-try/pkg/selector"
	"github.com/mattsolo1/grove-try/pkg/state"
	"github.com/spf13/cobra"
)

func NewChooseCmd() *cobra.Command {
	var (
		sel    selectionFlags
		dryRun bool
		echo   bool
	)

	cmd := &cobra.Command{
		Use:   "choose",
		Short: "Pick try jobs interactively and push them",
		Long: `Open an interactive checklist of build types, platforms and test suites.
The selection is compressed into try syntax; committing it pushes to try.

Keys: j/k move, J/K jump between siblings, l/h enter/leave, space toggles,
A toggles everything, f folds, c commits, e edits the syntax, q quits.

Examples:
  # Start from the built-in job table
  trychooser choose

  # Preselect opt builds on linux64 and only offer mochitests
  trychooser choose -b o -p linux64 --filter 'tests/mochitest/**'

  # Print the message instead of pushing it
  trychooser choose --echo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("choose needs a terminal; use 'trychooser syntax' for non-interactive use")
			}
			return runChoose(cmd, &sel, dryRun, echo)
		},
	}

	sel.register(cmd.Flags())
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the chooser but only print the final message")
	cmd.Flags().BoolVar(&echo, "echo", false, "Print the message instead of pushing (same as try.echo in grove.yml)")

	return cmd
}

func runChoose(cmd *cobra.Command, sel *selectionFlags, dryRun, echo bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadTryConfig(".")
	if err != nil {
		return err
	}
	t, doc, err := loadSelection(cfg, sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	echo = echo || dryRun || cfg.Echo

	// The chooser runs on the alternate screen, so echoed messages are
	// printed once it has closed.
	var pusher push.Pusher = push.Func(func(context.Context, string) error { return nil })
	if !echo {
		if pusher, err = newPusher(cfg, workingDir(), false, out); err != nil {
			return err
		}
	}

	model := chooser_tui.New(ctx, selector.New(t), doc.Generator(), pusher)
	message, err := chooser_tui.Run(ctx, model)
	if errors.Is(err, chooser_tui.ErrQuit) {
		fmt.Fprintln(out, color.YellowString("Quit without pushing."))
		return nil
	}
	if err != nil {
		return err
	}

	if echo {
		fmt.Fprintln(out, message)
		return nil
	}
	fmt.Fprintf(out, "%s Pushed to try: %s\n", color.GreenString("✓"), color.CyanString(message))
	log.WithField("message", message).Info("Try push finished")

	selection, _ := jobs.SelectionOf(t).Encode().(map[string]any)
	if err := state.Record(workingDir(), pick(sel.jobsFile, cfg.JobsFile), message, selection); err != nil {
		fmt.Fprintln(out, color.YellowString("Warning: could not record the push: %v", err))
	}
	return nil
}
