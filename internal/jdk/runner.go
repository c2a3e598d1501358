// Package jdk runs the external JDK tools. The orchestrator never interprets
// Java itself; compilation, documentation, tests and coverage are delegated to
// processes started through a Runner.
package jdk

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
)

// Command is one process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

func (c Command) String() string { return strings.Join(append([]string{c.Name}, c.Args...), " ") }

// Runner starts processes.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec. Output goes to Stdout and Stderr when
// set; on failure the captured stderr tail is attached to the error.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

const stderrTail = 4096

func (r ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	var captured bytes.Buffer
	cmd.Stdout = r.Stdout
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &captured)
	} else {
		cmd.Stderr = &captured
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tail := captured.String()
		if len(tail) > stderrTail {
			tail = tail[len(tail)-stderrTail:]
		}
		return errors.ToolchainError("tool failed").
			WithContext("command", c.Name).
			WithContext("stderr", strings.TrimSpace(tail)).
			WithCause(err).Build()
	}
	return nil
}

// Output runs c and returns its combined output.
func Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	return cmd.CombinedOutput()
}
