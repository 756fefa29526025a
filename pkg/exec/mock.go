package exec

import (
	"context"
)

// MockCommandExecutor is a mock implementation of CommandExecutor for testing.
// It records all commands that would be executed without actually running them.
type MockCommandExecutor struct {
	// Commands records all commands that were executed
	Commands []string

	// LookPathFunc allows custom behavior for LookPath in tests
	LookPathFunc func(file string) (string, error)

	// ExecuteFunc allows custom behavior for Execute in tests
	ExecuteFunc func(name string, arg ...string) error

	// OutputFunc allows custom behavior for Output in tests
	OutputFunc func(name string, arg ...string) ([]byte, error)
}

// LookPath implements the CommandExecutor interface for testing.
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	// By default, assume commands exist
	return "/path/to/" + file, nil
}

// Execute records the command that would be executed.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, arg ...string) error {
	m.Commands = append(m.Commands, commandLine(name, arg))
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, arg...)
	}
	return nil
}

// Output records the command and returns OutputFunc's result, or nothing.
func (m *MockCommandExecutor) Output(ctx context.Context, name string, arg ...string) ([]byte, error) {
	m.Commands = append(m.Commands, commandLine(name, arg))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.OutputFunc != nil {
		return m.OutputFunc(name, arg...)
	}
	return nil, nil
}
