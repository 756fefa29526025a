package jobs

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattsolo1/grove-try/pkg/tree"
)

// FilterFunc decides whether a leaf job survives. parents lists the names of
// its category and enclosing options, outermost first; name is the raw leaf
// name as written in the file.
type FilterFunc func(parents []string, name string) bool

// Filter prunes leaves rejected by keep. Interior options left without
// children disappear; categories are always kept, even when empty.
func Filter(cats []Category, keep FilterFunc) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		parents := []string{c.Name}
		out = append(out, Category{Name: c.Name, Options: filterOptions(c.Options, keep, parents)})
	}
	return out
}

func filterOptions(opts []Option, keep FilterFunc, parents []string) []Option {
	var out []Option
	for _, o := range opts {
		if len(o.Options) == 0 {
			if keep(parents, o.Name) {
				out = append(out, o)
			}
			continue
		}
		kids := filterOptions(o.Options, keep, append(parents, o.Name))
		if len(kids) > 0 {
			out = append(out, Option{Name: o.Name, Options: kids})
		}
	}
	return out
}

// GlobFilter keeps a leaf when any pattern matches its slash-joined path
// ("tests/mochitest/mochitest-1") or its bare name. Opt-in parentheses are
// stripped before matching.
func GlobFilter(patterns []string) (FilterFunc, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid filter pattern %q", p)
		}
	}
	return func(parents []string, name string) bool {
		segs := make([]string, 0, len(parents)+1)
		for _, p := range parents {
			n, _ := tree.ParseName(p)
			segs = append(segs, n)
		}
		leaf, _ := tree.ParseName(name)
		full := strings.Join(append(segs, leaf), "/")
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, full); ok {
				return true
			}
			if ok, _ := doublestar.Match(p, leaf); ok {
				return true
			}
		}
		return false
	}, nil
}

// Filter applies keep to the document's categories in place.
func (d *Document) Filter(keep FilterFunc) {
	if keep == nil {
		return
	}
	d.Categories = Filter(d.Categories, keep)
}
