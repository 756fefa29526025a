package chooser_tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len("TRY SYNTAX = ") - 1
		m.help, _ = m.help.Update(msg)
		m.updateScroll()
		return m, nil

	case pushDoneMsg:
		m.mode = modeBrowse
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.committed = true
		}
		return m, tea.Quit

	case tea.KeyMsg:
		switch m.mode {
		case modePushing:
			return m, nil

		case modeConfirm:
			switch strings.ToLower(msg.String()) {
			case "y", "enter":
				m.mode = modePushing
				return m, m.pushCmd()
			case "e":
				return m.startEdit()
			default:
				m.mode = modeBrowse
				return m, nil
			}

		case modeEdit:
			switch msg.String() {
			case "enter":
				m.override = strings.TrimRight(m.input.Value(), " \t")
				m.input.Blur()
				m.mode = modePushing
				return m, m.pushCmd()
			case "esc":
				m.input.Blur()
				m.mode = modeBrowse
				return m, nil
			}
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		// Any key closes the help screen.
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}

		e := m.engine
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			e.ShowHelp()
			m.help.ShowAll = true
		case key.Matches(msg, m.keys.Up):
			e.Up()
		case key.Matches(msg, m.keys.Down):
			e.Down()
		case key.Matches(msg, m.keys.UpSameLevel):
			e.UpSameLevel()
		case key.Matches(msg, m.keys.DownSameLevel):
			e.DownSameLevel()
		case key.Matches(msg, m.keys.Right):
			e.Right()
		case key.Matches(msg, m.keys.LeftShift):
			e.LeftShift()
		case key.Matches(msg, m.keys.Left):
			e.Left()
		case key.Matches(msg, m.keys.Toggle):
			e.ToggleApply()
		case key.Matches(msg, m.keys.ToggleAll):
			e.ToggleAll()
		case key.Matches(msg, m.keys.Fold):
			e.ToggleFolded()
		case key.Matches(msg, m.keys.FoldParent):
			e.ToggleFoldParent()
		case key.Matches(msg, m.keys.Commit):
			m.mode = modeConfirm
		case key.Matches(msg, m.keys.Edit):
			return m.startEdit()
		}
		m.updateScroll()
	}

	return m, nil
}

func (m Model) startEdit() (tea.Model, tea.Cmd) {
	m.mode = modeEdit
	m.input.SetValue(m.Message())
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

// updateScroll keeps the focused row inside the viewport with a small
// margin above and below it.
func (m *Model) updateScroll() {
	bodyHeight := m.height - statusLines
	if m.height == 0 || bodyHeight <= 0 {
		return
	}
	lines, start, end := m.body()
	padStart := m.offset
	padEnd := padStart + bodyHeight - 1

	switch {
	case end > padEnd-scrollMargin:
		m.offset += end - (padEnd - scrollMargin)
	case start < padStart+scrollMargin:
		m.offset += start - (padStart + scrollMargin)
	}
	if m.offset > len(lines)-1 {
		m.offset = len(lines) - 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}
