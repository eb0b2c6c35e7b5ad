package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/oshokin/app-version/internal/logger"
)

// DefaultTimeout bounds a single git invocation.
const DefaultTimeout = 10 * time.Second

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecError wraps command failures with exit details.
type ExecError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git command failed (exit=%d): %s: %s", e.ExitCode, e.Command, e.Stderr)
	}

	return fmt.Sprintf("git command failed (exit=%d): %s", e.ExitCode, e.Command)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands as local processes.
type ExecRunner struct {
	timeout time.Duration
}

// NewExecRunner creates a runner. A non-positive timeout uses DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &ExecRunner{timeout: timeout}
}

// Run starts name with args in dir and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	command := exec.CommandContext(cmdCtx, name, args...)
	command.Dir = dir

	var stdout, stderr bytes.Buffer

	command.Stdout = &stdout
	command.Stderr = &stderr

	line := strings.Join(append([]string{name}, args...), " ")
	logger.DebugKV(ctx, "Running command", "command", line, "dir", dir)

	if err := command.Run(); err != nil {
		return stdout.String(), wrapExecError(err, line, stderr.String())
	}

	return stdout.String(), nil
}

func wrapExecError(err error, line, stderr string) error {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &ExecError{
		Command:  line,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Err:      err,
	}
}
