package localmedia

import (
	"bytes"
	"context"
	"os/exec"
)

// CommandRunner executes a system binary and returns its stdout. Failures carry stderr.
type CommandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) { return exec.LookPath(name) }

func (execRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &RunError{Name: name, Err: err, Stderr: stderr.String()}
	}
	return stdout.Bytes(), nil
}

type RunError struct {
	Name   string
	Err    error
	Stderr string
}

func (e *RunError) Error() string {
	if e.Stderr == "" {
		return e.Name + " failed: " + e.Err.Error()
	}
	return e.Name + " failed: " + e.Err.Error() + "; out=" + e.Stderr
}

func (e *RunError) Unwrap() error { return e.Err }
