package syntax

import (
	"fmt"
	"sort"
)

// Enumerate is the rule text that forces every selected child to be
// listed individually.
const Enumerate = "*"

// Shorthand keys looked up in mapping rules.
const (
	KeyAll        = "all"
	KeyAllDefault = "all-default"
)

// Rule describes how one node of the job tree is rendered: a literal
// replacement, the Enumerate marker, or a mapping from names to nested
// rules.
type Rule struct {
	literal string
	entries map[string]Rule
	isMap   bool
}

// Literal returns a rule that renders as s.
func Literal(s string) Rule {
	return Rule{literal: s}
}

// Map returns a mapping rule. A nil map is an empty mapping.
func Map(entries map[string]Rule) Rule {
	if entries == nil {
		entries = map[string]Rule{}
	}
	return Rule{entries: entries, isMap: true}
}

// ParseRule converts a decoded JSON/YAML value into a Rule.
func ParseRule(v any) (Rule, error) {
	switch val := v.(type) {
	case nil:
		return Map(nil), nil
	case string:
		return Literal(val), nil
	case int, int64, float64, bool:
		return Literal(fmt.Sprint(val)), nil
	case map[string]any:
		entries := make(map[string]Rule, len(val))
		for k, sub := range val {
			r, err := ParseRule(sub)
			if err != nil {
				return Rule{}, fmt.Errorf("%s: %w", k, err)
			}
			entries[k] = r
		}
		return Map(entries), nil
	default:
		return Rule{}, fmt.Errorf("unsupported syntax rule of type %T", v)
	}
}

// IsMap reports whether r is a mapping rule.
func (r Rule) IsMap() bool {
	return r.isMap
}

// IsEnumerate reports whether r is the "*" marker.
func (r Rule) IsEnumerate() bool {
	return !r.isMap && r.literal == Enumerate
}

// Text returns the literal of a non-mapping rule.
func (r Rule) Text() (string, bool) {
	if r.isMap {
		return "", false
	}
	return r.literal, true
}

// Lookup returns the nested rule stored under name.
func (r Rule) Lookup(name string) (Rule, bool) {
	if !r.isMap {
		return Rule{}, false
	}
	sub, ok := r.entries[name]
	return sub, ok
}

// text returns the literal stored under name, if it is one.
func (r Rule) text(name string) (string, bool) {
	sub, ok := r.Lookup(name)
	if !ok {
		return "", false
	}
	return sub.Text()
}

// Keys returns the sorted mapping keys.
func (r Rule) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Encode converts the rule back into the decoded JSON/YAML shape.
func (r Rule) Encode() any {
	if !r.isMap {
		return r.literal
	}
	m := make(map[string]any, len(r.entries))
	for k, sub := range r.entries {
		m[k] = sub.Encode()
	}
	return m
}
