package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-try/cmd/chooser_tui"
	"github.com/mattsolo1/grove-try/pkg/jobs"
	"github.com/mattsolo1/grove-try/pkg/tree"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewJobsCmd() *cobra.Command {
	var (
		sel    selectionFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show the job table and its initial selection",
		Long: `Print every job of the job table with its selection marker:
  [*] selected   [X] all defaults selected   [/] some defaults missing   [ ] unselected
Opt-in jobs are shown in parentheses.

With --format yaml the (filtered) table is written back out as a job
description file whose initial selection is the current one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd, &sel, format)
		},
	}

	sel.register(cmd.Flags())
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "Output format: tree or yaml")

	return cmd
}

func runJobs(cmd *cobra.Command, sel *selectionFlags, format string) error {
	cfg, err := loadTryConfig(".")
	if err != nil {
		return err
	}
	t, doc, err := loadSelection(cfg, sel)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(describe(t, doc))
	}

	switch format {
	case "tree":
		printJobTree(out, t)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(describe(t, doc)); err != nil {
			return fmt.Errorf("encoding job table: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: want tree or yaml", format)
	}
}

// describe turns the current tree back into a job description.
func describe(t *tree.Tree, doc *jobs.Document) *jobs.File {
	initial, _ := jobs.SelectionOf(t).Encode().(map[string]any)
	rules := make(map[string]any, len(doc.Rules))
	for name, r := range doc.Rules {
		rules[name] = r.Encode()
	}
	return &jobs.File{
		Jobs:       jobs.Encode(doc.Categories),
		Initial:    initial,
		Syntax:     rules,
		Separators: doc.Separators,
		Defaults:   doc.Defaults,
	}
}

func printJobTree(w io.Writer, t *tree.Tree) {
	t.Walk(func(id tree.NodeID) bool {
		n := t.Node(id)
		box := chooser_tui.Checkbox(t, id)
		switch box {
		case "[*]", "[X]":
			box = color.GreenString(box)
		case "[/]":
			box = color.YellowString(box)
		}

		name := n.PrettyName()
		switch n.Kind {
		case tree.KindCategory:
			name = color.New(color.Bold).Sprint(name)
		case tree.KindOption:
			if n.Nondefault {
				name = color.HiBlackString(name)
			}
		}
		fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", n.Depth), box, name)
		return true
	})
}
