package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-core/cli"
	"github.com/mattsolo1/grove-try/pkg/syntax"
	"github.com/spf13/cobra"
)

// defaultHarnessArgs are forwarded when --arg is not given.
var defaultHarnessArgs = []string{"tag:append", "setenv:append", "e10s:bool"}

// parseHarnessArg reads "name", "name:bool" or "name:append".
func parseHarnessArg(def string) (syntax.HarnessArg, error) {
	name, kind, _ := strings.Cut(def, ":")
	name = strings.TrimPrefix(name, "--")
	if name == "" {
		return syntax.HarnessArg{}, fmt.Errorf("empty harness argument in %q", def)
	}
	arg := syntax.HarnessArg{Name: name}
	switch kind {
	case "", "string":
		arg.Kind = syntax.ArgString
	case "bool":
		arg.Kind = syntax.ArgBool
	case "append":
		arg.Kind = syntax.ArgAppend
	default:
		return syntax.HarnessArg{}, fmt.Errorf("unknown argument kind %q in %q: want string, bool or append", kind, def)
	}
	return arg, nil
}

type parseResult struct {
	Suite       string              `json:"suite,omitempty"`
	HarnessArgs []string            `json:"harness_args"`
	Tests       []string            `json:"tests,omitempty"`
	TestPaths   map[string][]string `json:"test_paths,omitempty"`
}

func NewParseCmd() *cobra.Command {
	var (
		argDefs []string
		suite    string
	)

	cmd := &cobra.Command{
		Use:   "parse MESSAGE",
		Short: "Extract harness arguments and test paths from a try message",
		Long: `Find the "try: " line of a commit message and report the arguments a test
harness should receive. Each --arg declares a forwarded argument as name,
name:bool or name:append. With --suite, the test paths for that suite are
listed and chunking is disabled.

Examples:
  trychooser parse "try: -b o -p linux -u mochitest --tag dom --try-test-paths mochitest:dom"
  trychooser parse --suite mochitest --arg tag:append "$(hg log -r . -T '{desc}')"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], argDefs, suite)
		},
	}

	cmd.Flags().StringArrayVar(&argDefs, "arg", nil, "Harness argument to forward: name, name:bool or name:append (repeatable)")
	cmd.Flags().StringVar(&suite, "suite", "", "Suite whose test paths should be reported")

	return cmd
}

func runParse(cmd *cobra.Command, message string, argDefs []string, suite string) error {
	if len(argDefs) == 0 {
		argDefs = defaultHarnessArgs
	}
	known := make([]syntax.HarnessArg, 0, len(argDefs))
	for _, def := range argDefs {
		arg, err := parseHarnessArg(def)
		if err != nil {
			return err
		}
		known = append(known, arg)
	}

	msg, err := syntax.ParseMessage(message)
	if err != nil {
		return err
	}

	res := parseResult{Suite: suite, TestPaths: msg.TestPaths}
	if suite != "" {
		res.HarnessArgs, res.Tests, err = msg.TryArgs(suite, known)
	} else {
		res.HarnessArgs, err = msg.HarnessArgs(known)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cli.GetOptions(cmd).JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	}

	fmt.Fprintf(out, "%s %s\n", color.CyanString("Harness args:"), strings.Join(res.HarnessArgs, " "))
	if suite != "" {
		fmt.Fprintf(out, "%s %s\n", color.CyanString("Tests:"), strings.Join(res.Tests, " "))
		return nil
	}
	suites := make([]string, 0, len(res.TestPaths))
	for s := range res.TestPaths {
		suites = append(suites, s)
	}
	sort.Strings(suites)
	for _, s := range suites {
		fmt.Fprintf(out, "%s %s\n", color.CyanString(s+":"), strings.Join(res.TestPaths[s], " "))
	}
	return nil
}
