// Package autotry derives try requests from the test paths a change touches.
package autotry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattsolo1/grove-try/pkg/syntax"
	"github.com/sirupsen/logrus"
)

// ErrNoTests is returned when neither paths nor explicit suites select
// anything to run.
var ErrNoTests = errors.New("no tests selected: pass test paths or suites")

// TestInfo describes one test file known to the resolver.
type TestInfo struct {
	Path     string `yaml:"path" json:"path"`
	Flavor   string `yaml:"flavor" json:"flavor"`
	Subsuite string `yaml:"subsuite,omitempty" json:"subsuite,omitempty"`
}

// Resolver finds the tests under a set of paths.
type Resolver interface {
	ResolveTests(ctx context.Context, paths []string) ([]TestInfo, error)
}

type flavor struct {
	jobs []string
	// path maps a requested path onto the harness's view of it.
	path func(string) string
}

func identity(p string) string { return p }

func reftestPath(p string) string { return path.Join("tests", "reftest", "tests", p) }

func wptPath(p string) string {
	_, rest, ok := strings.Cut(p, "testing/")
	if !ok {
		return p
	}
	return path.Join("tests", rest)
}

var flavors = map[string]flavor{
	"mochitest":          {jobs: []string{"mochitest-1", "mochitest-e10s-1"}, path: identity},
	"xpcshell":           {jobs: []string{"xpcshell"}, path: identity},
	"chrome":             {jobs: []string{"mochitest-o"}, path: identity},
	"browser-chrome":     {jobs: []string{"mochitest-browser-chrome-1", "mochitest-e10s-browser-chrome-1"}, path: identity},
	"devtools-chrome":    {jobs: []string{"mochitest-dt", "mochitest-e10s-devtools-chrome"}, path: identity},
	"crashtest":          {jobs: []string{"crashtest", "crashtest-e10s"}, path: reftestPath},
	"reftest":            {jobs: []string{"reftest", "reftest-e10s"}, path: reftestPath},
	"web-platform-tests": {jobs: []string{"web-platform-tests-1"}, path: wptPath},
}

// Flavors lists the test flavors autotry knows how to schedule.
func Flavors() []string {
	out := make([]string, 0, len(flavors))
	for f := range flavors {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// FlavorJobs returns the job names that run a flavor.
func FlavorJobs(f string) []string {
	return append([]string(nil), flavors[f].jobs...)
}

// PathsByFlavor groups the requested paths by the flavor of the tests found
// under them. Each path is rewritten into the form its harness expects.
// Tests of the devtools subsuite are scheduled as devtools-chrome. A glob
// contributes the directory of each test it matches.
func PathsByFlavor(tests []TestInfo, paths []string) map[string][]string {
	out := map[string][]string{}
	if len(paths) == 0 {
		return out
	}
	sorted := append([]string(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	seen := map[string]map[string]bool{}
	for _, t := range tests {
		fl, ok := flavors[t.Flavor]
		if !ok {
			continue
		}
		name := t.Flavor
		if t.Subsuite == "devtools" {
			name = "devtools-chrome"
		}
		for _, p := range sorted {
			hit, ok := matchPath(t.Path, p)
			if !ok {
				continue
			}
			mapped := fl.path(hit)
			if seen[name] == nil {
				seen[name] = map[string]bool{}
			}
			if !seen[name][mapped] {
				seen[name][mapped] = true
				out[name] = append(out[name], mapped)
			}
		}
	}
	for name := range out {
		sort.Strings(out[name])
	}
	return out
}

// RemoveDuplicates drops flavors that are already requested as suites.
func RemoveDuplicates(pathsByFlavor map[string][]string, suites []string) map[string][]string {
	out := make(map[string][]string, len(pathsByFlavor))
	for f, paths := range pathsByFlavor {
		if contains(suites, f) {
			continue
		}
		out[f] = append([]string(nil), paths...)
	}
	return out
}

// Options are the explicit parts of an autotry request.
type Options struct {
	Builds    string
	Platforms []string
	Suites    []string
	Tags      []string
	ExtraArgs []string
}

// CalcTrySyntax builds the request that runs the given suites plus the jobs
// needed for every flavor in pathsByFlavor. Talos is always disabled.
func CalcTrySyntax(opts Options, pathsByFlavor map[string][]string) syntax.Request {
	suites := map[string]bool{}
	for _, s := range opts.Suites {
		suites[s] = true
	}
	var paths []string
	for f, fpaths := range pathsByFlavor {
		if suites[f] {
			continue
		}
		for _, p := range fpaths {
			paths = append(paths, f+":"+p)
		}
		for _, job := range flavors[f].jobs {
			suites[job] = true
		}
	}
	names := make([]string, 0, len(suites))
	for s := range suites {
		names = append(names, s)
	}
	sort.Strings(names)

	return syntax.Request{
		Builds:    opts.Builds,
		Platforms: strings.Join(opts.Platforms, ","),
		Tests:     strings.Join(names, ","),
		Talos:     "none",
		Tags:      opts.Tags,
		ExtraArgs: opts.ExtraArgs,
		Paths:     paths,
	}
}

// AutoTry resolves paths and assembles requests.
type AutoTry struct {
	Resolver Resolver
	Logger   *logrus.Logger
}

// New returns an AutoTry with a quiet logger.
func New(r Resolver) *AutoTry {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &AutoTry{Resolver: r, Logger: logger}
}

// Request resolves paths and builds the try request for them.
func (a *AutoTry) Request(ctx context.Context, paths []string, opts Options) (syntax.Request, error) {
	if len(opts.Platforms) == 0 {
		return syntax.Request{}, errors.New("at least one platform is required")
	}
	var pbf map[string][]string
	if len(paths) > 0 {
		tests, err := a.Resolver.ResolveTests(ctx, paths)
		if err != nil {
			return syntax.Request{}, fmt.Errorf("resolving tests: %w", err)
		}
		pbf = RemoveDuplicates(PathsByFlavor(tests, paths), opts.Suites)
		if a.Logger != nil {
			a.Logger.WithFields(logrus.Fields{
				"paths":   len(paths),
				"tests":   len(tests),
				"flavors": len(pbf),
			}).Debug("Resolved test paths")
		}
	}
	if len(pbf) == 0 && len(opts.Suites) == 0 {
		return syntax.Request{}, ErrNoTests
	}
	return CalcTrySyntax(opts, pbf), nil
}

// matchPath reports whether the requested path p covers testPath and which
// path should be handed to the harness for it.
func matchPath(testPath, p string) (string, bool) {
	if strings.HasPrefix(testPath, p) {
		return p, true
	}
	if ok, _ := doublestar.Match(p, testPath); ok {
		return path.Dir(testPath), true
	}
	return "", false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
