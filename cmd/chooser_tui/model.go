package chooser_tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattsolo1/grove-core/tui/components/help"
	"github.com/mattsolo1/grove-try/pkg/push"
	"github.com/mattsolo1/grove-try/pkg/selector"
	"github.com/mattsolo1/grove-try/pkg/syntax"
)

// ErrQuit is returned by Run when the user leaves without committing.
var ErrQuit = errors.New("quit without committing")

// Lines reserved above and below the job list.
const (
	topStatusLines    = 2
	bottomStatusLines = 3
	statusLines       = topStatusLines + bottomStatusLines
	scrollMargin      = 3
)

type mode int

const (
	modeBrowse mode = iota
	modeConfirm
	modeEdit
	modePushing
)

// pushDoneMsg carries the result of the push command.
type pushDoneMsg struct {
	err error
}

// Model is the interactive job chooser.
type Model struct {
	ctx       context.Context
	engine    *selector.Engine
	generator *syntax.Generator
	pusher    push.Pusher

	keys  KeyMap
	help  help.Model
	input textinput.Model

	mode      mode
	override  string
	width     int
	height    int
	offset    int
	committed bool
	err       error
}

// New creates a chooser over the engine's tree. pusher receives the final
// try message on commit.
func New(ctx context.Context, engine *selector.Engine, generator *syntax.Generator, pusher push.Pusher) Model {
	keys := NewKeyMap()
	helpModel := help.NewBuilder().
		WithKeys(keys).
		WithTitle("trychooser - Help").
		Build()

	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 0

	return Model{
		ctx:       ctx,
		engine:    engine,
		generator: generator,
		pusher:    pusher,
		keys:      keys,
		help:      helpModel,
		input:     input,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Message is the try message that a commit would push: the edited override
// when there is one, the generated syntax otherwise.
func (m Model) Message() string {
	if m.override != "" {
		return m.override
	}
	return m.generator.Message(m.engine.Tree())
}

// Committed reports whether the message was pushed.
func (m Model) Committed() bool { return m.committed }

// Err is the push failure, if any.
func (m Model) Err() error { return m.err }

func (m Model) pushCmd() tea.Cmd {
	ctx, pusher, message := m.ctx, m.pusher, m.Message()
	return func() tea.Msg {
		return pushDoneMsg{err: pusher.Push(ctx, message)}
	}
}

// Run shows the chooser until the user commits or quits. It returns the
// pushed message, ErrQuit, or the push failure.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (string, error) {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)

	finalModel, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running TUI: %w", err)
	}

	fm := finalModel.(Model)
	if fm.err != nil {
		return "", fmt.Errorf("push failed: %w", fm.err)
	}
	if !fm.committed {
		return "", ErrQuit
	}
	return fm.Message(), nil
}
