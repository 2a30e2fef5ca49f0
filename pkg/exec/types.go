package exec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrEmptyCommand is returned when an invocation has no program name
	ErrEmptyCommand = errors.New("empty command")

	// ErrProgramNotFound is returned when the program cannot be resolved, or
	// resolves only through a relative PATH entry
	ErrProgramNotFound = errors.New("program not found")

	// ErrInvalidDir is returned when the working directory is missing or not a directory
	ErrInvalidDir = errors.New("invalid working directory")
)

// Invocation describes a single process launch: the program name plus its
// arguments, and the working directory to run it in.
type Invocation struct {
	args []string
	dir  string
}

// NewInvocation creates an invocation rooted at dir. The args slice is copied.
func NewInvocation(dir string, args ...string) Invocation {
	return Invocation{
		args: append([]string(nil), args...),
		dir:  dir,
	}
}

// Args returns a copy of the command tokens
func (i Invocation) Args() []string {
	return append([]string(nil), i.args...)
}

// Dir returns the working directory
func (i Invocation) Dir() string {
	return i.dir
}

// String returns the command line joined by spaces
func (i Invocation) String() string {
	return strings.Join(i.args, " ")
}

// Result holds the outcome of one invocation.
type Result struct {
	RunID    string        `json:"run_id"`
	Args     []string      `json:"args"`
	Dir      string        `json:"dir"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the process exited with code 0
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// LaunchError reports a command that could not be started
type LaunchError struct {
	Program string
	Dir     string
	Err     error
}

func (e *LaunchError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("launch failed: %v", e.Err)
	}
	if e.Dir == "" {
		return fmt.Sprintf("launching %s: %v", e.Program, e.Err)
	}
	return fmt.Sprintf("launching %s in %s: %v", e.Program, e.Dir, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}
