// Package syntax turns a job selection into try syntax and parses try
// syntax back out of commit messages.
package syntax

import (
	"strings"

	"github.com/mattsolo1/grove-try/pkg/tree"
)

// Category names that map onto try syntax flags.
const (
	CategoryBuilds    = "configuration"
	CategoryPlatforms = "platforms"
	CategoryTests     = "tests"
	CategoryTalos     = "talos"
)

// KnownCategory reports whether a category name has a place in try syntax.
func KnownCategory(name string) bool {
	if isBuilds(name) {
		return true
	}
	for _, c := range []string{CategoryPlatforms, CategoryTests, CategoryTalos} {
		if strings.EqualFold(name, c) {
			return true
		}
	}
	return false
}

// ScanForDefaults summarizes the subtree at id: all reports that every
// descendant is applied, allDefaults that every unapplied descendant is
// opt-in, and nondefaults that some opt-in descendant is applied.
func ScanForDefaults(t *tree.Tree, id tree.NodeID) (all, allDefaults, nondefaults bool) {
	n := t.Node(id)
	if !n.Applied {
		return false, n.Nondefault, false
	}
	all, allDefaults, nondefaults = true, true, n.Nondefault
	for _, kid := range t.Children(id) {
		ka, kd, kn := ScanForDefaults(t, kid)
		all = all && ka
		allDefaults = allDefaults && kd
		nondefaults = nondefaults || kn
	}
	return all, allDefaults, nondefaults
}

// Options renders the subtree at id as an ordered list of tokens.
func Options(t *tree.Tree, id tree.NodeID, rule Rule) []string {
	n := t.Node(id)
	if !n.Applied {
		return nil
	}

	all, allDefaults, nondefaults := ScanForDefaults(t, id)
	if !rule.IsEnumerate() && allDefaults {
		if !rule.IsMap() {
			return []string{rule.literal}
		}
		if all {
			if s, ok := rule.text(KeyAll); ok {
				return []string{s}
			}
		}
		if !nondefaults {
			if s, ok := rule.text(KeyAllDefault); ok {
				return []string{s}
			}
		}
		if s, ok := rule.text(n.Name); ok {
			return []string{s}
		}
	}

	var out []string
	for _, kid := range t.Children(id) {
		for _, tok := range Options(t, kid, kidRule(t, rule, kid)) {
			if tok != "" {
				out = append(out, tok)
			}
		}
	}
	return out
}

// kidRule picks the rule for a child: an explicit entry, an empty mapping
// for interior nodes, or the child's own name for leaves.
func kidRule(t *tree.Tree, parent Rule, kid tree.NodeID) Rule {
	name := t.Node(kid).Name
	if sub, ok := parent.Lookup(name); ok {
		return sub
	}
	if t.CanFold(kid) {
		return Map(nil)
	}
	return Map(map[string]Rule{name: Literal(name)})
}

// CategoryTokens is the rendered selection of one category.
type CategoryTokens struct {
	Name   string
	Tokens []string
}

// Defaults fill the request when the tree has no matching category.
type Defaults struct {
	Builds    []string `json:"builds,omitempty" yaml:"builds,omitempty" jsonschema:"description=Build types used when the tree has no configuration category"`
	Tags      []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	ExtraArgs []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty"`
	Paths     []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Generator renders selections according to per-category rules.
type Generator struct {
	Rules      map[string]Rule
	Separators map[string]string
	Defaults   Defaults
}

// Categories renders every category in tree order. A category without a
// rule is enumerated.
func (g *Generator) Categories(t *tree.Tree) []CategoryTokens {
	out := make([]CategoryTokens, 0, len(t.Roots()))
	for _, id := range t.Roots() {
		name := t.Node(id).Name
		rule, ok := g.Rules[name]
		if !ok {
			rule = Map(nil)
		}
		out = append(out, CategoryTokens{Name: name, Tokens: Options(t, id, rule)})
	}
	return out
}

// Separator returns the token separator for a category.
func (g *Generator) Separator(category string) string {
	if sep, ok := g.Separators[category]; ok {
		return sep
	}
	if sep, ok := g.Separators[strings.ToLower(category)]; ok {
		return sep
	}
	if isBuilds(category) {
		return ""
	}
	return ","
}

// Request assembles the try request for the current selection.
func (g *Generator) Request(t *tree.Tree) Request {
	req := Request{
		Builds:    strings.Join(g.Defaults.Builds, g.Separator(CategoryBuilds)),
		Tags:      append([]string(nil), g.Defaults.Tags...),
		ExtraArgs: append([]string(nil), g.Defaults.ExtraArgs...),
		Paths:     append([]string(nil), g.Defaults.Paths...),
	}
	for _, ct := range g.Categories(t) {
		joined := strings.Join(ct.Tokens, g.Separator(ct.Name))
		switch {
		case isBuilds(ct.Name):
			req.Builds = joined
		case strings.EqualFold(ct.Name, CategoryPlatforms):
			req.Platforms = joined
		case strings.EqualFold(ct.Name, CategoryTests):
			req.Tests = joined
		case strings.EqualFold(ct.Name, CategoryTalos):
			req.Talos = joined
		}
	}
	return req
}

// Generate renders the selection as try syntax without the "try:" prefix.
func (g *Generator) Generate(t *tree.Tree) string {
	return g.Request(t).String()
}

// Message renders the selection as a full "try: ..." line.
func (g *Generator) Message(t *tree.Tree) string {
	return g.Request(t).Message()
}

func isBuilds(category string) bool {
	return strings.EqualFold(category, CategoryBuilds) || strings.EqualFold(category, "builds")
}
