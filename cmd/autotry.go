package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattsolo1/grove-try/pkg/autotry"
	"github.com/mattsolo1/grove-try/pkg/push"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type autotryOptions struct {
	builds    string
	platforms []string
	suites    []string
	tags      []string
	manifest  string
	push      bool
	verbose   bool
}

func NewAutotryCmd() *cobra.Command {
	var opts autotryOptions

	cmd := &cobra.Command{
		Use:   "autotry [PATH...]",
		Short: "Build try syntax for the tests under the given paths",
		Long: `Resolve test paths through a test manifest, group them by flavor and emit
the try syntax that runs exactly those tests. Paths may be directory prefixes
or glob patterns ("dom/**/test_*.html").

The manifest is a YAML file:
  tests:
    - path: dom/tests/mochitest/test_a.html
      flavor: mochitest
    - path: devtools/client/test/browser_x.js
      flavor: browser-chrome
      subsuite: devtools

Examples:
  trychooser autotry -p linux64,macosx64 dom/indexedDB
  trychooser autotry -p linux64 -u gtest --push layout/reftests`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAutotry(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.builds, "build", "b", "do", "Build types: d (debug), o (opt) or do")
	cmd.Flags().StringSliceVarP(&opts.platforms, "platforms", "p", nil, "Platforms to run on (required)")
	cmd.Flags().StringSliceVarP(&opts.suites, "tests", "u", nil, "Additional test suites to run regardless of paths")
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "Restrict tests to the given tag (repeatable)")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "Test manifest (defaults to try.manifest in grove.yml)")
	cmd.Flags().BoolVar(&opts.push, "push", false, "Push the result to try instead of printing it")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Print the paths grouped by flavor and debug logs")

	return cmd
}

func runAutotry(cmd *cobra.Command, paths []string, opts *autotryOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	cfg, err := loadTryConfig(".")
	if err != nil {
		return err
	}

	resolver := &autotry.ManifestResolver{}
	if len(paths) > 0 {
		manifest, err := homedir.Expand(pick(opts.manifest, cfg.Manifest))
		if err != nil {
			return fmt.Errorf("expanding manifest path: %w", err)
		}
		if manifest == "" {
			return fmt.Errorf("test paths need a manifest: pass --manifest or set try.manifest")
		}
		if resolver, err = autotry.LoadManifest(manifest); err != nil {
			return err
		}
	}

	a := autotry.New(resolver)
	if opts.verbose {
		a.Logger.SetOutput(cmd.ErrOrStderr())
		a.Logger.SetLevel(logrus.DebugLevel)
	}
	if opts.verbose && len(paths) > 0 {
		tests, err := resolver.ResolveTests(ctx, paths)
		if err != nil {
			return err
		}
		printPathsByFlavor(out, autotry.PathsByFlavor(tests, paths))
	}

	req, err := a.Request(ctx, paths, autotry.Options{
		Builds:    opts.builds,
		Platforms: opts.platforms,
		Suites:    opts.suites,
		Tags:      opts.tags,
	})
	if err != nil {
		return err
	}
	message := req.Message()
	log.WithField("message", message).Debug("Calculated autotry syntax")

	if !opts.push {
		fmt.Fprintln(out, message)
		return nil
	}

	pusher, err := newPusher(cfg, workingDir(), false, out)
	if err != nil {
		return err
	}
	if vp, ok := pusher.(*push.VCSPusher); ok {
		if err := vp.CheckClean(ctx); err != nil {
			return fmt.Errorf("%w: commit or stash them before pushing to try", err)
		}
	}
	if err := pusher.Push(ctx, message); err != nil {
		return err
	}
	if _, ok := pusher.(push.EchoPusher); !ok {
		fmt.Fprintf(out, "%s Pushed to try: %s\n", color.GreenString("✓"), color.CyanString(message))
	}
	return nil
}

func printPathsByFlavor(w io.Writer, pbf map[string][]string) {
	if len(pbf) == 0 {
		fmt.Fprintln(w, color.YellowString("No tests found under the given paths."))
		return
	}
	flavors := make([]string, 0, len(pbf))
	for f := range pbf {
		flavors = append(flavors, f)
	}
	sort.Strings(flavors)

	fmt.Fprintln(w, "Paths by flavor:")
	for _, f := range flavors {
		fmt.Fprintf(w, "  %s: %s\n", color.CyanString(f), strings.Join(pbf[f], ", "))
	}
}
