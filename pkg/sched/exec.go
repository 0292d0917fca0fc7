package sched

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"al.essio.dev/pkg/shellescape"
)

const DefaultTimeout = 30 * time.Second

// CommandExecutor runs commands with os/exec. Every call gets its own
// deadline; a command that outlives it is killed and reported as a
// *CommandError.
type CommandExecutor struct {
	timeout time.Duration
	logger  *slog.Logger
}

// ExecutorOption configures a CommandExecutor
type ExecutorOption func(*CommandExecutor)

// WithTimeout sets the per-call timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *CommandExecutor) {
		e.timeout = d
	}
}

// WithLogger sets the logger used for command traces
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *CommandExecutor) {
		e.logger = logger
	}
}

func NewCommandExecutor(opts ...ExecutorOption) *CommandExecutor {
	e := &CommandExecutor{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Exec runs name with args. A non-zero exit is not an error here: the code
// is returned in the Result for the caller to interpret.
func (e *CommandExecutor) Exec(ctx context.Context, name string, args ...string) (*Result, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	line := shellescape.QuoteCommand(append([]string{name}, args...))
	e.logger.Debug("exec", "cmd", line)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		e.logger.Warn("exec timed out", "cmd", line, "after", elapsed)
		return nil, &CommandError{
			Command: name,
			Code:    -1,
			Stderr:  stderr.String(),
			Err:     fmt.Errorf("command did not finish: %w", ctxErr),
		}
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
	default:
		e.logger.Error("exec failed", "cmd", line, "err", err)
		return nil, &CommandError{Command: name, Code: -1, Err: err}
	}

	res := &Result{
		Code:   cmd.ProcessState.ExitCode(),
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	e.logger.Debug("exec done", "cmd", line, "code", res.Code, "elapsed", elapsed)
	return res, nil
}
