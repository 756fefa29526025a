package chooser_tui

import (
	"strings"

	"github.com/mattsolo1/grove-core/tui/theme"
	"github.com/mattsolo1/grove-try/pkg/selector"
	"github.com/mattsolo1/grove-try/pkg/tree"
)

const (
	categoryIndent = 3
	optionIndent   = 6
)

const confirmText = "Are you sure you want to commit the selected changes (e=edit) [Yne]? "

// Checkbox renders the selection state of id:
// [ ] unselected, [*] everything selected, [/] some default job missing,
// [X] all default jobs selected but some opt-in job is not.
func Checkbox(t *tree.Tree, id tree.NodeID) string {
	n := t.Node(id)
	if !n.Applied {
		return "[ ]"
	}
	if !t.CanFold(id) || !n.Partial {
		return "[*]"
	}
	missingDefault := false
	for _, kid := range t.Children(id) {
		t.WalkFrom(kid, func(d tree.NodeID) bool {
			dn := t.Node(d)
			if !dn.Applied && !dn.Nondefault {
				missingDefault = true
			}
			return !missingDefault
		})
		if missingDefault {
			return "[/]"
		}
	}
	return "[X]"
}

func foldMarker(t *tree.Tree, id tree.NodeID) string {
	if !t.CanFold(id) {
		return "  "
	}
	if t.Node(id).Folded {
		return "++"
	}
	return "--"
}

// body renders the visible job rows and reports the line span of the
// focused row.
func (m Model) body() (lines []string, start, end int) {
	t := m.engine.Tree()
	current := m.engine.Current()
	th := theme.DefaultTheme

	for _, id := range t.VisibleNodes() {
		n := t.Node(id)
		prefix := Checkbox(t, id) + foldMarker(t, id)
		selected := id == current

		var line string
		switch n.Kind {
		case tree.KindCategory:
			if len(lines) > 0 {
				lines = append(lines, "")
			}
			style := th.Bold
			if selected {
				style = th.Selected.Bold(true)
			}
			line = strings.Repeat(" ", categoryIndent) + prefix + style.Render(n.Name)
		case tree.KindOption:
			style := th.Muted
			if !n.Nondefault {
				style = th.Info
			}
			if selected {
				style = th.Selected
			}
			indent := strings.Repeat(" ", n.Depth*2+optionIndent)
			line = indent + prefix + style.Render(n.PrettyName())
		}

		if selected {
			start = len(lines)
			end = len(lines)
		}
		lines = append(lines, line)
	}
	return lines, start, end
}

func (m Model) legend() string {
	th := theme.DefaultTheme
	return th.Header.Render("SELECT JOBS: (j/k/up/dn/pgup/pgdn) move cursor; (space/A) toggle build/all") + "\n" +
		th.Header.Render(" (f)old/unfold; (c)ommit to selection; (q)uit; (?) help | [X]=build selected ++=folded")
}

func (m Model) status() string {
	th := theme.DefaultTheme
	var b strings.Builder

	if m.mode == modeEdit {
		b.WriteString(th.Info.Render("TRY SYNTAX = ") + m.input.View())
	} else {
		b.WriteString(th.Info.Render("TRY SYNTAX = " + m.Message()))
	}

	t := m.engine.Tree()
	cur := m.engine.Current()
	if m.mode == modeBrowse && cur != tree.None && m.engine.LastAction != selector.ActionSelection && t.CanFold(cur) {
		n := t.Node(cur)
		show, sel := "show", "select defaults"
		if !n.Folded {
			show = "hide"
		}
		if n.Applied {
			sel = "deselect all children"
		}
		b.WriteString("\n" + th.Muted.Render("Press f to "+show+" children, space to "+sel))
	}
	if m.mode == modePushing {
		b.WriteString("\n" + th.Warning.Render("Pushing to try..."))
	}
	return b.String()
}

func (m Model) View() string {
	if m.help.ShowAll {
		return m.help.View()
	}

	if m.mode == modeConfirm {
		th := theme.DefaultTheme
		return m.Message() + "\n" + th.Warning.Render(confirmText)
	}

	lines, _, _ := m.body()
	if m.height > 0 {
		bodyHeight := m.height - statusLines
		if bodyHeight <= 0 {
			lines = nil
		} else {
			from := m.offset
			if from > len(lines) {
				from = len(lines)
			}
			to := from + bodyHeight
			if to > len(lines) {
				to = len(lines)
			}
			lines = lines[from:to]
		}
	}

	var b strings.Builder
	b.WriteString(m.legend())
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	b.WriteString(m.status())
	return b.String()
}
