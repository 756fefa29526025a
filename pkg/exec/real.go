package exec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecError wraps an execution error with the command output
type ExecError struct {
	Command string
	Err     error
	Output  string
}

func (e *ExecError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, out)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code, or -1 when the command did not run.
func (e *ExecError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// RealCommandExecutor runs commands with os/exec. Dir, when set, is the
// working directory of every command.
type RealCommandExecutor struct {
	Dir string
}

// LookPath searches for an executable named file in the directories
// named by the PATH environment variable.
func (e *RealCommandExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Execute runs the command, capturing combined output for the error.
func (e *RealCommandExecutor) Execute(ctx context.Context, name string, arg ...string) error {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = e.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &ExecError{Command: commandLine(name, arg), Err: err, Output: string(output)}
	}
	return nil
}

// Output runs the command and returns its standard output. Standard error
// ends up in the ExecError on failure.
func (e *RealCommandExecutor) Output(ctx context.Context, name string, arg ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, arg...)
	cmd.Dir = e.Dir
	out, err := cmd.Output()
	if err != nil {
		execErr := &ExecError{Command: commandLine(name, arg), Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.Output = string(exitErr.Stderr)
		}
		return out, execErr
	}
	return out, nil
}

func commandLine(name string, arg []string) string {
	if len(arg) == 0 {
		return name
	}
	return name + " " + strings.Join(arg, " ")
}
