package tree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSample returns:
//
//	platforms: linux, (linux64), windows
//	tests:     mochitest: [m1, m2], reftest
func buildSample() *Tree {
	t := New()
	p := t.AddCategory("platforms")
	t.AddOption(p, "linux")
	t.AddOption(p, "(linux64)")
	t.AddOption(p, "windows")
	tc := t.AddCategory("tests")
	m := t.AddOption(tc, "mochitest")
	t.AddOption(m, "m1")
	t.AddOption(m, "m2")
	t.AddOption(tc, "reftest")
	t.Link()
	return t
}

func mustFind(t *testing.T, tr *Tree, path ...string) NodeID {
	t.Helper()
	id := tr.Find(path...)
	require.NotEqual(t, None, id, "node %v not found", path)
	return id
}

func names(tr *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, tr.Node(id).Name)
	}
	return out
}

// checkConsistent asserts the applied/partial relationship on every node.
func checkConsistent(t *testing.T, tr *Tree) {
	t.Helper()
	tr.Walk(func(id NodeID) bool {
		n := tr.Node(id)
		kids := tr.Children(id)
		if len(kids) == 0 {
			assert.False(t, n.Partial, "leaf %s must not be partial", n.Name)
			return true
		}
		anyApplied, allApplied, anyPartial := false, true, false
		for _, kid := range kids {
			k := tr.Node(kid)
			anyApplied = anyApplied || k.Applied
			allApplied = allApplied && k.Applied
			anyPartial = anyPartial || k.Partial
		}
		assert.Equal(t, anyApplied, n.Applied, "applied of %s", n.Name)
		assert.Equal(t, anyApplied && (!allApplied || anyPartial), n.Partial, "partial of %s", n.Name)
		return true
	})
}

type snapshot struct{ applied, partial bool }

func selectionState(tr *Tree) []snapshot {
	out := make([]snapshot, tr.Len())
	for i := 0; i < tr.Len(); i++ {
		n := tr.Node(NodeID(i))
		out[i] = snapshot{n.Applied, n.Partial}
	}
	return out
}

func TestParseName(t *testing.T) {
	tests := []struct {
		raw        string
		name       string
		nondefault bool
	}{
		{"linux", "linux", false},
		{"(linux64)", "linux64", true},
		{"(a (b))", "a (b)", true},
		{"(open", "(open", false},
		{"", "", false},
	}
	for _, tc := range tests {
		name, nondefault := ParseName(tc.raw)
		assert.Equal(t, tc.name, name, tc.raw)
		assert.Equal(t, tc.nondefault, nondefault, tc.raw)
	}
}

func TestConstruction(t *testing.T) {
	tr := buildSample()

	p := mustFind(t, tr, "platforms")
	assert.Equal(t, KindCategory, tr.Node(p).Kind)
	assert.False(t, tr.Node(p).Folded, "categories start unfolded")
	assert.True(t, tr.IsFoldRoot(p))

	l64 := mustFind(t, tr, "platforms", "linux64")
	assert.True(t, tr.Node(l64).Nondefault)
	assert.Equal(t, "(linux64)", tr.Node(l64).PrettyName())
	assert.False(t, tr.InheritApply(l64))
	assert.Equal(t, 1, tr.Node(l64).Depth)

	m1 := mustFind(t, tr, "tests", "mochitest", "m1")
	assert.Equal(t, 2, tr.Node(m1).Depth)
	assert.Equal(t, []string{"tests", "mochitest", "m1"}, tr.Path(m1))
	assert.Equal(t, None, tr.Find("tests", "nope"))

	m := mustFind(t, tr, "tests", "mochitest")
	assert.True(t, tr.CanFold(m))
	assert.False(t, tr.CanFold(m1))
	assert.Equal(t, m1, tr.FirstChild(m))
	assert.Equal(t, None, tr.FirstChild(m1))
	assert.Equal(t, m, tr.Parent(m1))
	assert.Equal(t, None, tr.Parent(p))
}

func TestNextItemFollowsVisibleOrder(t *testing.T) {
	tr := buildSample()

	var order []NodeID
	for id := tr.Roots()[0]; id != None; id = tr.NextItem(id, false) {
		order = append(order, id)
	}
	assert.Equal(t,
		[]string{"platforms", "linux", "linux64", "windows", "tests", "mochitest", "reftest"},
		names(tr, order))
	assert.Equal(t, names(tr, tr.VisibleNodes()), names(tr, order))

	tr.SetFolded(mustFind(t, tr, "tests", "mochitest"), false)
	order = nil
	for id := tr.Roots()[0]; id != None; id = tr.NextItem(id, false) {
		order = append(order, id)
	}
	assert.Equal(t,
		[]string{"platforms", "linux", "linux64", "windows", "tests", "mochitest", "m1", "m2", "reftest"},
		names(tr, order))
}

func TestPrevItemFollowsVisibleOrder(t *testing.T) {
	tr := buildSample()
	last := mustFind(t, tr, "tests", "reftest")

	var order []string
	for id := last; id != None; id = tr.PrevItem(id, false) {
		order = append(order, tr.Node(id).Name)
	}
	assert.Equal(t,
		[]string{"reftest", "mochitest", "tests", "windows", "linux64", "linux", "platforms"},
		order)

	tr.SetFolded(mustFind(t, tr, "tests", "mochitest"), false)
	assert.Equal(t, "m2", tr.Node(tr.PrevItem(last, false)).Name)
}

func TestPrevItemSkipsNestedFoldedSubtree(t *testing.T) {
	tr := New()
	c := tr.AddCategory("c")
	x := tr.AddOption(c, "x")
	a := tr.AddOption(x, "a")
	b := tr.AddOption(a, "b")
	tr.AddOption(b, "leaf")
	after := tr.AddOption(c, "after")
	tr.Link()

	tr.SetFolded(x, false)
	tr.SetFolded(a, false)
	tr.SetFolded(b, true)
	assert.Equal(t, b, tr.PrevItem(after, false))

	// An unfolded node hidden under a folded ancestor is never returned.
	tr.SetFolded(a, true)
	tr.SetFolded(b, false)
	assert.Equal(t, a, tr.PrevItem(after, false))
}

func TestSameLevelNavigation(t *testing.T) {
	tr := buildSample()
	linux := mustFind(t, tr, "platforms", "linux")
	windows := mustFind(t, tr, "platforms", "windows")
	tests := mustFind(t, tr, "tests")
	reftest := mustFind(t, tr, "tests", "reftest")

	assert.Equal(t, "linux64", tr.Node(tr.NextItem(linux, true)).Name)
	assert.Equal(t, tests, tr.NextItem(windows, true), "climbs to the parent's sibling")
	assert.Equal(t, None, tr.NextItem(reftest, true))
	assert.Equal(t, None, tr.PrevItem(linux, true))
	assert.Equal(t, "mochitest", tr.Node(tr.PrevItem(reftest, true)).Name)
}

func TestNavigationBoundaries(t *testing.T) {
	tr := buildSample()
	first := tr.Roots()[0]
	last := mustFind(t, tr, "tests", "reftest")

	assert.Equal(t, None, tr.PrevItem(first, false))
	assert.Equal(t, None, tr.NextItem(last, false))
}

func TestRelinkAfterGrowth(t *testing.T) {
	tr := buildSample()
	p := mustFind(t, tr, "platforms")
	mac := tr.AddOption(p, "mac")
	windows := mustFind(t, tr, "platforms", "windows")

	assert.Equal(t, mac, tr.NextItem(windows, false))
}

func TestSetAppliedSkipsNondefault(t *testing.T) {
	tr := buildSample()
	p := mustFind(t, tr, "platforms")

	tr.SetApplied(p, true)

	assert.True(t, tr.Node(mustFind(t, tr, "platforms", "linux")).Applied)
	assert.True(t, tr.Node(mustFind(t, tr, "platforms", "windows")).Applied)
	assert.False(t, tr.Node(mustFind(t, tr, "platforms", "linux64")).Applied)
	assert.True(t, tr.Node(p).Applied)
	assert.True(t, tr.Node(p).Partial)
	checkConsistent(t, tr)

	// Explicitly applying the opt-in job completes the category.
	tr.SetApplied(mustFind(t, tr, "platforms", "linux64"), true)
	assert.False(t, tr.Node(p).Partial)
	checkConsistent(t, tr)
}

func TestDeselectForcesNondefault(t *testing.T) {
	tr := buildSample()
	p := mustFind(t, tr, "platforms")
	for _, id := range tr.Children(p) {
		tr.SetApplied(id, true)
	}
	require.True(t, tr.Node(p).Applied)
	require.False(t, tr.Node(p).Partial)

	tr.SetApplied(p, false)

	for _, id := range tr.Children(p) {
		assert.False(t, tr.Node(id).Applied, tr.Node(id).Name)
	}
	assert.False(t, tr.Node(p).Applied)
	checkConsistent(t, tr)
}

func TestLeafToggleUpdatesAncestors(t *testing.T) {
	tr := buildSample()
	m1 := mustFind(t, tr, "tests", "mochitest", "m1")

	tr.SetApplied(m1, true)

	m := tr.Node(mustFind(t, tr, "tests", "mochitest"))
	tests := tr.Node(mustFind(t, tr, "tests"))
	assert.True(t, m.Applied)
	assert.True(t, m.Partial)
	assert.True(t, tests.Applied)
	assert.True(t, tests.Partial)
	checkConsistent(t, tr)
}

func TestSelectingOptInOnlyNodeSelectsNothing(t *testing.T) {
	tr := New()
	c := tr.AddCategory("extras")
	tr.AddOption(c, "(a)")
	tr.AddOption(c, "(b)")
	tr.Link()

	tr.SetApplied(c, true)

	assert.False(t, tr.Node(c).Applied)
	assert.False(t, tr.Node(c).Partial)
	checkConsistent(t, tr)
}

func TestSetAppliedIdempotent(t *testing.T) {
	tr := buildSample()
	tests := mustFind(t, tr, "tests")

	tr.SetApplied(tests, true)
	once := selectionState(tr)
	tr.SetApplied(tests, true)

	assert.Equal(t, once, selectionState(tr))
}

func TestFoldingIsPresentationOnly(t *testing.T) {
	tr := buildSample()
	tr.SetApplied(mustFind(t, tr, "platforms"), true)
	tr.SetApplied(mustFind(t, tr, "tests", "mochitest", "m2"), true)
	before := selectionState(tr)

	for i := 0; i < tr.Len(); i++ {
		tr.ToggleFolded(NodeID(i), false)
		tr.ToggleFolded(NodeID(i), true)
	}

	assert.Equal(t, before, selectionState(tr))
}

func TestToggleFolded(t *testing.T) {
	tr := buildSample()
	tests := mustFind(t, tr, "tests")
	m := mustFind(t, tr, "tests", "mochitest")
	m1 := mustFind(t, tr, "tests", "mochitest", "m1")

	assert.Equal(t, m, tr.ToggleFolded(m, false))
	assert.False(t, tr.Node(m).Folded)

	// Fold-parent moves the focus up and folds the parent.
	assert.Equal(t, m, tr.ToggleFolded(m1, true))
	assert.True(t, tr.Node(m).Folded)

	// First fold of a category also folds its foldable children.
	tr.SetFolded(m, false)
	assert.Equal(t, tests, tr.ToggleFolded(tests, false))
	assert.True(t, tr.Node(tests).Folded)
	assert.True(t, tr.Node(m).Folded)
	assert.False(t, tr.Visible(m))

	assert.Equal(t, tests, tr.ToggleFolded(tests, false))
	assert.False(t, tr.Node(tests).Folded)

	// Leaves have nothing to fold.
	leaf := mustFind(t, tr, "tests", "reftest")
	folded := tr.Node(leaf).Folded
	tr.ToggleFolded(leaf, false)
	assert.Equal(t, folded, tr.Node(leaf).Folded)
}

func TestRandomTogglesKeepAncestorsConsistent(t *testing.T) {
	tr := buildSample()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		id := NodeID(rng.Intn(tr.Len()))
		switch rng.Intn(3) {
		case 0:
			tr.SetApplied(id, true)
		case 1:
			tr.SetApplied(id, false)
		default:
			tr.SetApplied(id, !tr.Node(id).Applied)
		}
		checkConsistent(t, tr)
	}
}

func TestRecomputePartial(t *testing.T) {
	tr := buildSample()
	tr.Node(mustFind(t, tr, "tests", "mochitest", "m1")).Applied = true
	tr.Node(mustFind(t, tr, "platforms", "linux")).Applied = true
	tr.Node(mustFind(t, tr, "platforms", "windows")).Applied = true
	tr.Node(mustFind(t, tr, "platforms", "linux64")).Applied = true

	tr.RecomputePartial()

	assert.True(t, tr.Node(mustFind(t, tr, "platforms")).Applied)
	assert.False(t, tr.Node(mustFind(t, tr, "platforms")).Partial)
	assert.True(t, tr.Node(mustFind(t, tr, "tests")).Partial)
	checkConsistent(t, tr)
}
