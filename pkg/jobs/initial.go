package jobs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mattsolo1/grove-try/pkg/tree"
)

// Selection modes. Any other mode names the single entry to select.
const (
	ModeAll  = "all"
	ModeFull = "full"
)

// Selection is the expanded form of an initial selection. The zero value
// selects nothing.
//
//	"linux"                     -> {Mode: "linux"}
//	["linux", "windows"]        -> {Entries: {linux: all, windows: all}}
//	[{"linux": "linux64"}, "w"] -> {Entries: {linux: {Mode: linux64}, w: all}}
//	"all"                       -> {Mode: "all"}
type Selection struct {
	Mode    string
	Entries map[string]Selection
}

// All selects every default entry.
func All() Selection { return Selection{Mode: ModeAll} }

// IsZero reports whether the selection selects nothing.
func (s Selection) IsZero() bool {
	return s.Mode == "" && s.Entries == nil
}

// ExpandInitial converts the user-editable initial selection (a name, a
// list, or a nested mapping) into a Selection.
func ExpandInitial(v any) (Selection, error) {
	switch e := v.(type) {
	case nil:
		return Selection{}, nil
	case string:
		return Selection{Mode: e}, nil
	case bool:
		return Selection{Mode: strconv.FormatBool(e)}, nil
	case int:
		return Selection{Mode: strconv.Itoa(e)}, nil
	case float64:
		return Selection{Mode: strconv.FormatFloat(e, 'f', -1, 64)}, nil
	case []string:
		items := make([]any, len(e))
		for i, s := range e {
			items[i] = s
		}
		return ExpandInitial(items)
	case []any:
		sel := Selection{Entries: map[string]Selection{}}
		for _, item := range e {
			if m, ok := item.(map[string]any); ok {
				sub, err := ExpandInitial(m)
				if err != nil {
					return Selection{}, err
				}
				for k, v := range sub.Entries {
					sel.Entries[k] = v
				}
				continue
			}
			name, err := ExpandInitial(item)
			if err != nil {
				return Selection{}, err
			}
			if name.Mode == "" {
				return Selection{}, fmt.Errorf("list entry %v is not a name", item)
			}
			sel.Entries[name.Mode] = All()
		}
		return sel, nil
	case map[string]any:
		sel := Selection{Entries: make(map[string]Selection, len(e))}
		for k, v := range e {
			sub, err := ExpandInitial(v)
			if err != nil {
				return Selection{}, fmt.Errorf("%s: %w", k, err)
			}
			sel.Entries[k] = sub
		}
		return sel, nil
	default:
		return Selection{}, fmt.Errorf("unsupported selection of type %T", v)
	}
}

// ApplyInitial seeds the applied state of every node from sel, whose
// entries are keyed by category name, then rederives partial state
// bottom-up. Previously applied nodes not named by sel are cleared.
func ApplyInitial(t *tree.Tree, sel Selection) {
	seed(t, t.Roots(), sel)
	t.RecomputePartial()
}

// seed mirrors the selection onto one sibling list and reports whether all
// or none of the siblings ended up applied.
func seed(t *tree.Tree, ids []tree.NodeID, sel Selection) (allOn, allOff bool) {
	allOn, allOff = true, true
	for _, id := range ids {
		n := t.Node(id)
		applied := false
		sub, named := sel.Entries[n.Name]
		switch {
		case sel.Mode == ModeFull:
			applied = true
		case sel.Mode == ModeAll:
			applied = !n.Nondefault
		case sel.Mode == n.Name, named:
			applied = true
		}

		kids := t.Children(id)
		n.Partial = false
		if !applied {
			allOn = false
			n.Applied = false
			if len(kids) > 0 {
				seed(t, kids, Selection{})
			}
			continue
		}

		allOff = false
		n.Applied = true
		if len(kids) == 0 {
			continue
		}
		kidSel := All()
		switch {
		case sel.Mode == ModeFull:
			kidSel = sel
		case named:
			kidSel = sub
		}
		on, off := seed(t, kids, kidSel)
		n.Partial = !on && !off
		if off {
			n.Applied = false
		}
	}
	return allOn, allOff
}

// SelectionOf reads the current applied state back as a Selection keyed by
// category. Fully applied subtrees collapse to "full".
func SelectionOf(t *tree.Tree) Selection {
	return selectionOf(t, t.Roots())
}

func selectionOf(t *tree.Tree, ids []tree.NodeID) Selection {
	sel := Selection{Entries: map[string]Selection{}}
	for _, id := range ids {
		n := t.Node(id)
		if !n.Applied {
			continue
		}
		kids := t.Children(id)
		switch {
		case len(kids) == 0, !n.Partial:
			sel.Entries[n.Name] = Selection{Mode: ModeFull}
		default:
			sel.Entries[n.Name] = selectionOf(t, kids)
		}
	}
	return sel
}

// String renders the selection compactly, entries sorted by name.
func (s Selection) String() string {
	if s.Entries == nil {
		return s.Mode
	}
	keys := make([]string, 0, len(s.Entries))
	for k := range s.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		sub := s.Entries[k]
		if sub.Entries == nil && sub.Mode == ModeAll {
			parts[i] = k
			continue
		}
		parts[i] = k + ":" + sub.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Encode converts the selection back into the shape ExpandInitial reads.
func (s Selection) Encode() any {
	if s.Entries == nil {
		if s.Mode == "" {
			return nil
		}
		return s.Mode
	}
	m := make(map[string]any, len(s.Entries))
	for k, sub := range s.Entries {
		m[k] = sub.Encode()
	}
	return m
}
