package common

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// RunResult captures the outcome of an external command.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands with a deadline taken from the context.
// Arguments are passed as a list, never through a shell, so credentials in
// the argument vector are not subject to shell interpretation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (RunResult, error)
}

// OSRunner runs commands on the host. When the context deadline expires the
// process is killed (best effort) and context.DeadlineExceeded is returned.
type OSRunner struct{}

func (OSRunner) Run(ctx context.Context, name string, args ...string) (RunResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Log the command name only. Argument vectors can carry credentials.
	log.Debug().Str("command", name).Msg("running external command")

	err := cmd.Run()
	result := RunResult{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Non-zero exit is reported through ExitCode, not as an error.
		return result, nil
	}

	return result, err
}
