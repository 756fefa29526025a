// Package selector holds the focus and toggle state of an interactive job
// tree. It knows nothing about rendering or input devices.
package selector

import (
	"github.com/mattsolo1/grove-try/pkg/tree"
)

// Action classifies the last operation so presenters can decide which hints
// to show.
type Action int

const (
	ActionInit Action = iota
	ActionNavigation
	ActionSelection
	ActionVisibility
	ActionHelp
)

func (a Action) String() string {
	switch a {
	case ActionInit:
		return "init"
	case ActionNavigation:
		return "navigation"
	case ActionSelection:
		return "selection"
	case ActionVisibility:
		return "visibility"
	case ActionHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Engine is the selection state machine over one job tree.
type Engine struct {
	tree    *tree.Tree
	current tree.NodeID

	// lastToggleAllApplied starts true, so the first ToggleAll deselects.
	lastToggleAllApplied bool

	LastAction Action
}

// New focuses the first category of t.
func New(t *tree.Tree) *Engine {
	cur := tree.None
	if roots := t.Roots(); len(roots) > 0 {
		cur = roots[0]
	}
	return &Engine{
		tree:                 t,
		current:              cur,
		lastToggleAllApplied: true,
		LastAction:           ActionInit,
	}
}

// Tree returns the tree the engine operates on.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Current returns the focused node, or tree.None for an empty tree.
func (e *Engine) Current() tree.NodeID { return e.current }

// SetCurrent moves the focus to id.
func (e *Engine) SetCurrent(id tree.NodeID) {
	if id != tree.None {
		e.current = id
	}
}

func (e *Engine) empty() bool { return e.current == tree.None }

func (e *Engine) moveTo(id tree.NodeID) {
	if id != tree.None {
		e.current = id
	}
}

// Up moves to the previous visible node.
func (e *Engine) Up() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	e.moveTo(e.tree.PrevItem(e.current, false))
}

// Down moves to the next visible node.
func (e *Engine) Down() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	e.moveTo(e.tree.NextItem(e.current, false))
}

// UpSameLevel moves to the previous sibling, or to the parent when there is
// none.
func (e *Engine) UpSameLevel() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	next := e.tree.PrevItem(e.current, true)
	if next == tree.None {
		next = e.tree.Parent(e.current)
	}
	e.moveTo(next)
}

// DownSameLevel moves to the next sibling, or to the parent's next sibling.
func (e *Engine) DownSameLevel() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	next := e.tree.NextItem(e.current, true)
	if next == tree.None {
		if p := e.tree.Parent(e.current); p != tree.None {
			next = e.tree.NextItem(p, true)
		}
	}
	e.moveTo(next)
}

// Right unfolds the focused node if needed and moves to its first child.
func (e *Engine) Right() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	first := e.tree.FirstChild(e.current)
	if e.tree.Node(e.current).Folded {
		e.toggleFolded(e.current, false)
	}
	e.moveTo(first)
}

// Left folds the focused node when it is unfolded, otherwise moves to its
// parent. A top-level node with nowhere to go is folded.
func (e *Engine) Left() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	cur := e.current
	if e.tree.CanFold(cur) && !e.tree.Node(cur).Folded {
		e.toggleFolded(cur, false)
		e.LastAction = ActionVisibility
		return
	}
	parent := e.tree.Parent(cur)
	if parent == tree.None {
		if !e.tree.Node(cur).Folded {
			e.toggleFolded(cur, false)
		}
		return
	}
	e.current = parent
}

// LeftShift folds the focused category when it is unfolded, otherwise moves
// to the category that contains the focused node.
func (e *Engine) LeftShift() {
	e.LastAction = ActionNavigation
	if e.empty() {
		return
	}
	cur := e.current
	if e.tree.IsFoldRoot(cur) && !e.tree.Node(cur).Folded {
		e.toggleFolded(cur, false)
		e.LastAction = ActionVisibility
		return
	}
	for p := e.tree.Parent(cur); p != tree.None; p = e.tree.Parent(cur) {
		cur = p
	}
	e.current = cur
}

// ToggleApply flips the applied state of the focused node.
func (e *Engine) ToggleApply() {
	e.LastAction = ActionSelection
	if e.empty() {
		return
	}
	e.ToggleApplyNode(e.current, nil)
}

// ToggleApplyNode sets id to *value, or flips it when value is nil.
func (e *Engine) ToggleApplyNode(id tree.NodeID, value *bool) {
	v := !e.tree.Node(id).Applied
	if value != nil {
		v = *value
	}
	e.tree.SetApplied(id, v)
}

// ToggleAll alternates between deselecting and selecting every category.
// The first call deselects.
func (e *Engine) ToggleAll() {
	e.LastAction = ActionSelection
	for _, id := range e.tree.Roots() {
		applied := e.tree.Node(id).Applied
		if applied == e.lastToggleAllApplied {
			e.ToggleApplyNode(id, nil)
		}
	}
	e.lastToggleAllApplied = !e.lastToggleAllApplied
}

// ToggleFolded folds or unfolds the focused node.
func (e *Engine) ToggleFolded() {
	e.LastAction = ActionVisibility
	if e.empty() {
		return
	}
	e.toggleFolded(e.current, false)
}

// ToggleFoldParent folds or unfolds the focused node's parent and focuses it.
func (e *Engine) ToggleFoldParent() {
	e.LastAction = ActionVisibility
	if e.empty() {
		return
	}
	e.toggleFolded(e.current, true)
}

// ShowHelp records that help was requested.
func (e *Engine) ShowHelp() {
	e.LastAction = ActionHelp
}

func (e *Engine) toggleFolded(id tree.NodeID, foldParent bool) {
	focus := e.tree.ToggleFolded(id, foldParent)
	if foldParent {
		e.current = focus
	}
}
