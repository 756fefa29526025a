package jobs

import (
	"strings"

	"github.com/mattsolo1/grove-try/pkg/syntax"
	"github.com/mattsolo1/grove-try/pkg/tree"
)

// buildCodes maps the single-letter build codes onto configuration options.
var buildCodes = []struct {
	code, option string
}{
	{"d", "debug"},
	{"o", "opt"},
}

// Choices are command-line selections that replace the file's initial
// selection for the categories they name.
type Choices struct {
	Builds    string   // build codes, e.g. "do"
	Platforms []string // leaf names, or "all"
	Tests     []string // leaf names, or "all"
	Tags      []string
	ExtraArgs []string
	Paths     []string
}

// IsZero reports whether no choice was made.
func (c Choices) IsZero() bool {
	return c.Builds == "" && len(c.Platforms) == 0 && len(c.Tests) == 0 &&
		len(c.Tags) == 0 && len(c.ExtraArgs) == 0 && len(c.Paths) == 0
}

// Apply folds the choices into the document: non-empty category choices
// replace that category's initial selection and the rest override the
// generator defaults.
func (c Choices) Apply(d *Document) {
	if d.Initial.Entries == nil {
		d.Initial = Selection{Entries: map[string]Selection{}}
	}

	if c.Builds != "" {
		sel := Selection{Entries: map[string]Selection{}}
		for _, bc := range buildCodes {
			if strings.Contains(c.Builds, bc.code) {
				sel.Entries[bc.option] = All()
			}
		}
		if len(sel.Entries) > 0 {
			d.Initial.Entries[syntax.CategoryBuilds] = sel
		}
	}

	for _, cc := range []struct {
		category string
		targets  []string
	}{
		{syntax.CategoryPlatforms, c.Platforms},
		{syntax.CategoryTests, c.Tests},
	} {
		if len(cc.targets) == 0 {
			continue
		}
		if sel, ok := c.categorySelection(d, cc.category, cc.targets); ok {
			d.Initial.Entries[cc.category] = sel
		}
	}

	if len(c.Tags) > 0 {
		d.Defaults.Tags = c.Tags
	}
	if len(c.ExtraArgs) > 0 {
		d.Defaults.ExtraArgs = c.ExtraArgs
	}
	if len(c.Paths) > 0 {
		d.Defaults.Paths = c.Paths
	}
}

func (c Choices) categorySelection(d *Document, category string, targets []string) (Selection, bool) {
	for _, t := range targets {
		if t == ModeAll {
			return All(), true
		}
	}
	for _, cat := range d.Categories {
		if cat.Name != category {
			continue
		}
		sel := Selection{Entries: map[string]Selection{}}
		lookupLeaves(cat.Options, targets, nil, &sel)
		return sel, len(sel.Entries) > 0
	}
	return Selection{}, false
}

// lookupLeaves finds the leaves named by targets and records each one under
// the chain of options that encloses it.
func lookupLeaves(opts []Option, targets []string, prefixes []string, out *Selection) {
	for _, o := range opts {
		if len(o.Options) > 0 {
			name, _ := tree.ParseName(o.Name)
			lookupLeaves(o.Options, targets, append(prefixes, name), out)
			continue
		}
		name, _ := tree.ParseName(o.Name)
		if !contains(targets, name) && !contains(targets, o.Name) {
			continue
		}
		target := out
		for _, p := range prefixes {
			next, ok := target.Entries[p]
			if !ok || next.Entries == nil {
				next = Selection{Entries: map[string]Selection{}}
			}
			target.Entries[p] = next
			target = &next
		}
		target.Entries[name] = All()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
