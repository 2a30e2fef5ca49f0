package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommandRunner interface abstracts command execution for testability
type CommandRunner interface {
	// Run executes the invocation to completion and returns its outcome.
	// A non-zero exit code is reported in the Result, not as an error.
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// RealCommandRunner implements CommandRunner using os/exec
type RealCommandRunner struct {
	logger    *zap.Logger
	waitDelay time.Duration
}

// DefaultWaitDelay bounds how long a cancelled run waits for its output pipes
// to close after the child has been killed.
const DefaultWaitDelay = 5 * time.Second

// NewRealCommandRunner creates a new real command runner
func NewRealCommandRunner(logger *zap.Logger) *RealCommandRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealCommandRunner{logger: logger, waitDelay: DefaultWaitDelay}
}

// Run spawns the command rooted at the invocation's directory, blocks until it
// exits and captures both output streams.
func (r *RealCommandRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	args := inv.Args()
	if len(args) == 0 {
		return nil, &LaunchError{Err: ErrEmptyCommand}
	}

	if err := checkDir(inv.Dir()); err != nil {
		return nil, &LaunchError{Program: args[0], Dir: inv.Dir(), Err: err}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = inv.Dir()
	cmd.WaitDelay = r.waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Executing command",
		zap.Strings("args", args),
		zap.String("dir", inv.Dir()))

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(runErr, &exitErr):
			exitCode = exitErr.ExitCode()
		case errors.Is(runErr, exec.ErrWaitDelay) && cmd.ProcessState != nil:
			// the child exited but a descendant kept the pipes open
			exitCode = cmd.ProcessState.ExitCode()
		default:
			if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, exec.ErrDot) || errors.Is(runErr, fs.ErrNotExist) {
				runErr = fmt.Errorf("%w: %w", ErrProgramNotFound, runErr)
			}
			return nil, &LaunchError{Program: args[0], Dir: inv.Dir(), Err: runErr}
		}
	}

	result := &Result{
		RunID:    uuid.New().String(),
		Args:     args,
		Dir:      inv.Dir(),
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	r.logger.Info("Command finished",
		zap.String("run_id", result.RunID),
		zap.Strings("args", args),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", elapsed),
		zap.String("stdout", result.Stdout),
		zap.String("stderr", result.Stderr))

	return result, nil
}

// checkDir verifies that dir exists and is a directory. An empty dir means the
// current working directory.
func checkDir(dir string) error {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDir, dir)
	}
	return nil
}
