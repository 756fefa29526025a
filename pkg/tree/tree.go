// Package tree implements the ordered, foldable checkbox tree behind the
// try chooser. Nodes live in a single arena and refer to each other by
// index, so a Tree can be copied around by pointer without any ownership
// cycles.
package tree

import "strings"

// NodeID indexes a node inside a Tree.
type NodeID int

// None marks an absent link (no parent, no sibling, end of traversal).
const None NodeID = -1

// Kind distinguishes the two node variants.
type Kind int

const (
	// KindCategory is a top-level grouping such as "platforms" or "tests".
	KindCategory Kind = iota
	// KindOption is any selectable job below a category.
	KindOption
)

func (k Kind) String() string {
	return [...]string{"category", "option"}[k]
}

// Node holds the per-node state. Link fields are maintained by Tree.Link.
type Node struct {
	Name       string
	Kind       Kind
	Depth      int
	Nondefault bool

	Applied bool
	Partial bool
	Folded  bool

	neverUnfolded bool

	parent   NodeID
	children []NodeID

	nextSib NodeID
	prevSib NodeID
	next    NodeID
	prev    NodeID
}

// PrettyName returns the name as written in job files, with nondefault
// options wrapped in parentheses.
func (n *Node) PrettyName() string {
	if n.Nondefault {
		return "(" + n.Name + ")"
	}
	return n.Name
}

// Tree is an arena of nodes plus the ordered list of top-level categories.
type Tree struct {
	nodes  []Node
	roots  []NodeID
	linked bool
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// ParseName strips the "(name)" opt-in convention from a raw job name.
func ParseName(raw string) (name string, nondefault bool) {
	if len(raw) >= 2 && strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		return raw[1 : len(raw)-1], true
	}
	return raw, false
}

// AddCategory appends a top-level category. Categories start unfolded.
func (t *Tree) AddCategory(raw string) NodeID {
	name, nondefault := ParseName(raw)
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Name:          name,
		Kind:          KindCategory,
		Nondefault:    nondefault,
		neverUnfolded: true,
		parent:        None,
		nextSib:       None,
		prevSib:       None,
		next:          None,
		prev:          None,
	})
	t.roots = append(t.roots, id)
	t.linked = false
	return id
}

// AddOption appends an option under parent. Options start folded.
func (t *Tree) AddOption(parent NodeID, raw string) NodeID {
	name, nondefault := ParseName(raw)
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Name:          name,
		Kind:          KindOption,
		Depth:         t.nodes[parent].Depth + 1,
		Nondefault:    nondefault,
		Folded:        true,
		neverUnfolded: true,
		parent:        parent,
		nextSib:       None,
		prevSib:       None,
		next:          None,
		prev:          None,
	})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	t.linked = false
	return id
}

// Link assigns sibling and depth-first traversal links for the whole
// forest. It must run after the last node is added; navigation relinks
// automatically if the shape changed since.
func (t *Tree) Link() {
	t.link(t.roots, None)
	t.linked = true
}

func (t *Tree) link(siblings []NodeID, prev NodeID) NodeID {
	for i, id := range siblings {
		n := &t.nodes[id]
		n.prevSib, n.nextSib = None, None
		if i > 0 {
			n.prevSib = siblings[i-1]
		}
		if i < len(siblings)-1 {
			n.nextSib = siblings[i+1]
		}
	}
	for _, id := range siblings {
		t.nodes[id].prev = prev
		t.nodes[id].next = None
		if prev != None {
			t.nodes[prev].next = id
		}
		prev = t.link(t.nodes[id].children, id)
	}
	return prev
}

func (t *Tree) ensureLinked() {
	if !t.linked {
		t.Link()
	}
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node for id. The pointer is invalidated by AddCategory
// and AddOption.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Roots returns the top-level categories in display order.
func (t *Tree) Roots() []NodeID {
	return t.roots
}

// Children returns the children of id in display order.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// FirstChild returns the first child of id, or None for leaves.
func (t *Tree) FirstChild(id NodeID) NodeID {
	kids := t.nodes[id].children
	if len(kids) == 0 {
		return None
	}
	return kids[0]
}

// Parent returns the owning node, or None for categories.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// CanFold reports whether id has children to hide.
func (t *Tree) CanFold(id NodeID) bool {
	return len(t.nodes[id].children) > 0
}

// IsFoldRoot reports whether id is a top-level category.
func (t *Tree) IsFoldRoot(id NodeID) bool {
	return t.nodes[id].Kind == KindCategory
}

// InheritApply reports whether selecting an ancestor also selects id.
func (t *Tree) InheritApply(id NodeID) bool {
	return !t.nodes[id].Nondefault
}

// NextItem returns the node after id. With constrainLevel it jumps to the
// next sibling, climbing to the nearest ancestor that has one; otherwise it
// follows the visible depth-first order. None means id is the last node.
func (t *Tree) NextItem(id NodeID, constrainLevel bool) NodeID {
	t.ensureLinked()
	n := &t.nodes[id]
	if constrainLevel || n.Folded || len(n.children) == 0 {
		if n.nextSib != None {
			return n.nextSib
		}
		p := n.parent
		for p != None && t.nodes[p].nextSib == None {
			p = t.nodes[p].parent
		}
		if p == None {
			return None
		}
		return t.nodes[p].nextSib
	}
	return n.next
}

// PrevItem returns the node before id, as NextItem does in reverse. The
// unconstrained form never lands inside a folded subtree.
func (t *Tree) PrevItem(id NodeID, constrainLevel bool) NodeID {
	t.ensureLinked()
	n := &t.nodes[id]
	if constrainLevel {
		return n.prevSib
	}
	if n.prevSib == None {
		return n.prev
	}
	if t.nodes[n.prevSib].Folded {
		return n.prevSib
	}
	prev := n.prev
	for a := t.nodes[prev].parent; a != None; a = t.nodes[a].parent {
		if t.nodes[a].Folded {
			prev = a
		}
	}
	return prev
}

// SetApplied selects or deselects id and its subtree, then recomputes every
// ancestor. Selecting skips nondefault descendants; deselecting reaches all
// of them.
func (t *Tree) SetApplied(id NodeID, value bool) {
	t.setDescendantsApplied(id, value)
	t.updateAncestors(id)
}

func (t *Tree) setDescendantsApplied(id NodeID, value bool) {
	t.nodes[id].Applied = value
	t.nodes[id].Partial = false
	if !value {
		for _, kid := range t.nodes[id].children {
			t.setDescendantsApplied(kid, false)
		}
		return
	}

	anyApplied := false
	for _, kid := range t.nodes[id].children {
		if t.InheritApply(kid) {
			t.setDescendantsApplied(kid, true)
		}
		k := &t.nodes[id]
		kn := &t.nodes[kid]
		if kn.Applied {
			anyApplied = true
		}
		if !kn.Applied || kn.Partial {
			k.Partial = true
		}
	}
	// A node whose children are all opt-in has no defaults to select.
	if len(t.nodes[id].children) > 0 && !anyApplied {
		t.nodes[id].Applied = false
		t.nodes[id].Partial = false
	}
}

func (t *Tree) updateAncestors(id NodeID) {
	for p := t.nodes[id].parent; p != None; p = t.nodes[p].parent {
		t.recompute(p)
	}
}

// recompute derives applied/partial of an interior node from its children.
func (t *Tree) recompute(id NodeID) {
	kids := t.nodes[id].children
	if len(kids) == 0 {
		return
	}
	anyApplied, allApplied, anyPartial := false, true, false
	for _, kid := range kids {
		k := &t.nodes[kid]
		if k.Applied {
			anyApplied = true
		} else {
			allApplied = false
		}
		if k.Partial {
			anyPartial = true
		}
	}
	n := &t.nodes[id]
	n.Applied = anyApplied
	n.Partial = anyApplied && (!allApplied || anyPartial)
}

// RecomputePartial walks the tree bottom-up and rederives applied/partial
// for every interior node. Used after bulk seeding.
func (t *Tree) RecomputePartial() {
	for _, id := range t.roots {
		t.recomputeSubtree(id)
	}
}

func (t *Tree) recomputeSubtree(id NodeID) {
	for _, kid := range t.nodes[id].children {
		t.recomputeSubtree(kid)
	}
	if len(t.nodes[id].children) == 0 {
		t.nodes[id].Partial = false
		return
	}
	t.recompute(id)
}

// ToggleFolded flips the fold state of id and returns the node that should
// hold the focus afterwards. In foldParent mode the parent is folded
// instead. The first fold of a category also sets its children's fold
// state. Nodes without children are left alone.
func (t *Tree) ToggleFolded(id NodeID, foldParent bool) NodeID {
	item := id
	parent := t.nodes[id].parent
	if foldParent || (parent == None && t.nodes[id].neverUnfolded) {
		if parent != None {
			item = parent
		} else {
			t.nodes[item].neverUnfolded = false
		}
		if parent == None {
			for _, kid := range t.nodes[item].children {
				if t.CanFold(kid) {
					t.nodes[kid].Folded = !t.nodes[item].Folded
				}
			}
		}
	}
	if t.CanFold(item) {
		t.nodes[item].Folded = !t.nodes[item].Folded
	}
	return item
}

// SetFolded sets the fold state of id directly.
func (t *Tree) SetFolded(id NodeID, folded bool) {
	t.nodes[id].Folded = folded
}

// Visible reports whether no ancestor of id is folded.
func (t *Tree) Visible(id NodeID) bool {
	for p := t.nodes[id].parent; p != None; p = t.nodes[p].parent {
		if t.nodes[p].Folded {
			return false
		}
	}
	return true
}

// VisibleNodes returns every visible node in display order.
func (t *Tree) VisibleNodes() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID) bool {
		out = append(out, id)
		return !t.nodes[id].Folded
	})
	return out
}

// Walk visits every node depth-first in display order. Returning false from
// fn skips that node's children.
func (t *Tree) Walk(fn func(id NodeID) bool) {
	for _, id := range t.roots {
		t.WalkFrom(id, fn)
	}
}

// WalkFrom is Walk restricted to the subtree rooted at id.
func (t *Tree) WalkFrom(id NodeID, fn func(id NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, kid := range t.nodes[id].children {
		t.WalkFrom(kid, fn)
	}
}

// Find resolves a path of names from the roots, or returns None.
func (t *Tree) Find(path ...string) NodeID {
	level := t.roots
	found := None
	for _, name := range path {
		found = None
		for _, id := range level {
			if t.nodes[id].Name == name {
				found = id
				break
			}
		}
		if found == None {
			return None
		}
		level = t.nodes[found].children
	}
	return found
}

// Path returns the names from the category down to id.
func (t *Tree) Path(id NodeID) []string {
	var rev []string
	for n := id; n != None; n = t.nodes[n].parent {
		rev = append(rev, t.nodes[n].Name)
	}
	out := make([]string, len(rev))
	for i, name := range rev {
		out[len(rev)-1-i] = name
	}
	return out
}
