package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattsolo1/grove-core/logging"
	"github.com/mattsolo1/grove-try/pkg/exec"
	"github.com/mattsolo1/grove-try/pkg/jobs"
	"github.com/mattsolo1/grove-try/pkg/push"
	"github.com/mattsolo1/grove-try/pkg/state"
	"github.com/mattsolo1/grove-try/pkg/tree"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

var log = logging.NewLogger("grove-try")

// selectionFlags are the flags shared by every command that builds a job
// selection.
type selectionFlags struct {
	jobsFile  string
	filters   []string
	build     string
	platforms []string
	tests     []string
	tags      []string
	extraArgs []string
	paths     []string
	last      bool
}

func (f *selectionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.jobsFile, "jobs", "", "Job description file (JSON or YAML); defaults to the built-in table")
	fs.StringSliceVar(&f.filters, "filter", nil, "Only offer jobs matching these glob patterns (e.g. 'tests/mochitest*/**')")
	fs.StringVarP(&f.build, "build", "b", "", "Build types to select: d (debug), o (opt) or do")
	fs.StringSliceVarP(&f.platforms, "platforms", "p", nil, "Platforms to select, or 'all'")
	fs.StringSliceVarP(&f.tests, "tests", "u", nil, "Test suites to select, or 'all'")
	fs.StringArrayVar(&f.tags, "tag", nil, "Restrict tests to the given tag (repeatable)")
	fs.StringArrayVar(&f.extraArgs, "extra-arg", nil, "Extra argument appended to the try syntax (repeatable)")
	fs.StringSliceVar(&f.paths, "test-paths", nil, "suite:path entries for --try-test-paths")
	fs.BoolVar(&f.last, "last", false, "Start from the selection of the last push from this repository")
}

func (f *selectionFlags) choices() jobs.Choices {
	return jobs.Choices{
		Builds:    f.build,
		Platforms: f.platforms,
		Tests:     f.tests,
		Tags:      f.tags,
		ExtraArgs: f.extraArgs,
		Paths:     f.paths,
	}
}

// loadSelection reads the job description, applies filters and
// command-line choices, and returns the seeded tree.
func loadSelection(cfg *TryConfig, f *selectionFlags) (*tree.Tree, *jobs.Document, error) {
	path, err := homedir.Expand(pick(f.jobsFile, cfg.JobsFile))
	if err != nil {
		return nil, nil, fmt.Errorf("expanding jobs path: %w", err)
	}

	file, err := jobs.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := file.Document()
	if err != nil {
		return nil, nil, err
	}

	if f.last {
		if err := applyLastSelection(doc); err != nil {
			return nil, nil, err
		}
	}

	filters := f.filters
	if len(filters) == 0 {
		filters = cfg.Filters
	}
	if len(filters) > 0 {
		keep, err := jobs.GlobFilter(filters)
		if err != nil {
			return nil, nil, err
		}
		doc.Filter(keep)
	}

	if c := f.choices(); !c.IsZero() {
		c.Apply(doc)
	}

	t := doc.BuildTree()
	jobs.ApplyInitial(t, doc.Initial)

	source := path
	if source == "" {
		source = "built-in"
	}
	log.WithFields(logrus.Fields{
		"jobs":       source,
		"nodes":      t.Len(),
		"categories": doc.CategoryNames(),
		"filters":    filters,
		"initial":    doc.Initial.String(),
	}).Debug("Built job tree")

	return t, doc, nil
}

func applyLastSelection(doc *jobs.Document) error {
	st, err := state.Load(workingDir())
	if err != nil {
		return err
	}
	if st.Selection == nil {
		return fmt.Errorf("no previous push recorded in %s", state.Path(workingDir()))
	}
	sel, err := jobs.ExpandInitial(st.Selection)
	if err != nil {
		return fmt.Errorf("last selection: %w", err)
	}
	doc.Initial = sel
	return nil
}

// newPusher picks the push collaborator: an echo pusher for dry runs,
// otherwise a VCS pusher for the repository in dir.
func newPusher(cfg *TryConfig, dir string, echo bool, out io.Writer) (push.Pusher, error) {
	if echo || cfg.Echo {
		return push.EchoPusher{Out: out}, nil
	}

	vcs, err := push.ParseVCS(cfg.VCS)
	if err != nil {
		return nil, err
	}
	p := push.NewVCSPusher(dir, vcs, &exec.RealCommandExecutor{Dir: dir})
	if cfg.TryRemote != "" {
		p.Remote = cfg.TryRemote
	}
	return p, nil
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
