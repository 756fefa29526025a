package exec

import "context"

// CommandExecutor runs external commands. Pushers take one so tests can
// record commands instead of running them.
type CommandExecutor interface {
	// LookPath searches for an executable named file in the directories
	// named by the PATH environment variable.
	LookPath(file string) (string, error)

	// Execute runs the command and waits for it to finish.
	Execute(ctx context.Context, name string, arg ...string) error

	// Output runs the command and returns its standard output.
	Output(ctx context.Context, name string, arg ...string) ([]byte, error)
}
