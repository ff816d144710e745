// Package shell runs the external toolset executables the pipeline is
// built around. Every stage talks to its collaborator through a Runner,
// so tests can substitute fakes that record invocations.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Command describes one external tool invocation.
type Command struct {
	Name string
	Args []string

	// Stdin, when non-nil, is streamed to the process.
	Stdin io.Reader

	// Stdout, when non-nil, receives the process output verbatim.
	// Otherwise output is captured into the Result.
	Stdout io.Writer
}

// String returns the command line for logs and error reports.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result holds the captured streams of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes external commands. The pipeline uses Local in
// production; tests inject fakes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Error reports a command that could not be started or exited non-zero.
// It carries the full command line and both captured streams so a failing
// run is diagnosable from the error alone.
type Error struct {
	Command string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("command failed: %s\nstdout: %s\nstderr: %s", e.Command, e.Stdout, e.Stderr)
}

func (e *Error) Unwrap() error { return e.Err }

// Local runs commands as synchronous child processes.
type Local struct{}

// Run executes cmd and waits for it to exit. Stderr is always captured;
// stdout is captured unless the command redirects it elsewhere.
func (Local) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)

	var outBuf, errBuf bytes.Buffer
	c.Stdin = cmd.Stdin
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	} else {
		c.Stdout = &outBuf
	}
	c.Stderr = &errBuf

	err := c.Run()
	res := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err != nil {
		return res, &Error{Command: cmd.String(), Stdout: res.Stdout, Stderr: res.Stderr, Err: err}
	}
	return res, nil
}
