package chooser_tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/mattsolo1/grove-core/tui/keymap"
)

type KeyMap struct {
	keymap.Base
	UpSameLevel   key.Binding
	DownSameLevel key.Binding
	Right         key.Binding
	Left          key.Binding
	LeftShift     key.Binding
	Toggle        key.Binding
	ToggleAll     key.Binding
	Fold          key.Binding
	FoldParent    key.Binding
	Commit        key.Binding
	Edit          key.Binding
}

func NewKeyMap() KeyMap {
	base := keymap.NewBase()
	base.Up = key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous unfolded job"),
	)
	base.Down = key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next unfolded job"),
	)
	base.Help = key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	)
	base.Quit = key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit without committing"),
	)
	return KeyMap{
		Base: base,
		UpSameLevel: key.NewBinding(
			key.WithKeys("K", "pgup"),
			key.WithHelp("pgup/K", "previous job of same type"),
		),
		DownSameLevel: key.NewBinding(
			key.WithKeys("J", "pgdown"),
			key.WithHelp("pgdn/J", "next job of same type"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "go to child job"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "go to parent job"),
		),
		LeftShift: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("shift+←/H", "go to parent header / fold header"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "(un-)select job"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "(un-)select all jobs"),
		),
		Fold: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fold / unfold job"),
		),
		FoldParent: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "fold / unfold parent job"),
		),
		Commit: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "commit selection and push to try"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit syntax string, then push"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Fold, k.Commit, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			key.NewBinding(key.WithKeys(""), key.WithHelp("", "Navigation")),
			k.Up,
			k.Down,
			k.UpSameLevel,
			k.DownSameLevel,
			k.Right,
			k.Left,
			k.LeftShift,
		},
		{
			key.NewBinding(key.WithKeys(""), key.WithHelp("", "Selection")),
			k.Toggle,
			k.ToggleAll,
			k.Fold,
			k.FoldParent,
		},
		{
			key.NewBinding(key.WithKeys(""), key.WithHelp("", "Actions")),
			k.Commit,
			k.Edit,
			k.Help,
			k.Quit,
		},
	}
}
