package clients

import (
	"context"
	"os/exec"
	"time"
)

// CommandFunc builds the process to run; swapped out in tests.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Exec wraps external tools invoked as subprocesses.
type Exec struct {
	cmd     CommandFunc
	timeout time.Duration
}

func NewExec(timeout time.Duration) *Exec {
	return &Exec{cmd: exec.CommandContext, timeout: timeout}
}

// NewExecWith is NewExec with a custom process builder.
func NewExecWith(timeout time.Duration, cmd CommandFunc) *Exec {
	return &Exec{cmd: cmd, timeout: timeout}
}
