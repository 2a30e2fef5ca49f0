package check

import (
	"fmt"
	"strings"

	"github.com/justatest/cmdcheck/pkg/exec"
)

// Status is the verdict of a single check
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusXFail Status = "xfail"
	StatusXPass Status = "xpass"
	StatusError Status = "error"
)

// Expectation describes what a check expects from its command
type Expectation struct {
	ExitCode       int     `yaml:"exit_code" json:"exit_code"`
	Stdout         *string `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	StdoutContains string  `yaml:"stdout_contains,omitempty" json:"stdout_contains,omitempty"`
	StderrContains string  `yaml:"stderr_contains,omitempty" json:"stderr_contains,omitempty"`

	// KnownBad marks an expectation that is known not to hold. It is
	// reported as xfail while it keeps failing and as xpass once it holds.
	KnownBad bool   `yaml:"known_bad,omitempty" json:"known_bad,omitempty"`
	Reason   string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Check is a named command with an expectation
type Check struct {
	Name    string      `yaml:"name" json:"name"`
	Args    []string    `yaml:"args" json:"args"`
	Dir     string      `yaml:"dir,omitempty" json:"dir,omitempty"`
	Fixture string      `yaml:"fixture,omitempty" json:"fixture,omitempty"`
	Expect  Expectation `yaml:"expect" json:"expect"`
}

// Validate reports problems that would prevent the check from running
func (c *Check) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("check has no name")
	}
	if len(c.Args) == 0 {
		return fmt.Errorf("check %q has no args", c.Name)
	}
	return nil
}

// Invocation builds the invocation for this check in dir
func (c *Check) Invocation(dir string) exec.Invocation {
	return exec.NewInvocation(dir, c.Args...)
}

// Outcome is the evaluated result of one check
type Outcome struct {
	Check      string       `json:"check"`
	Status     Status       `json:"status"`
	Mismatches []string     `json:"mismatches,omitempty"`
	Error      string       `json:"error,omitempty"`
	Result     *exec.Result `json:"result,omitempty"`
}

// Failed reports whether the outcome should fail a run
func (o *Outcome) Failed() bool {
	switch o.Status {
	case StatusFail, StatusXPass, StatusError:
		return true
	}
	return false
}

// Evaluate compares a result against an expectation
func Evaluate(name string, res *exec.Result, expect Expectation) *Outcome {
	outcome := &Outcome{
		Check:      name,
		Result:     res,
		Mismatches: mismatches(res, expect),
	}

	held := len(outcome.Mismatches) == 0
	switch {
	case held && !expect.KnownBad:
		outcome.Status = StatusPass
	case !held && !expect.KnownBad:
		outcome.Status = StatusFail
	case !held && expect.KnownBad:
		outcome.Status = StatusXFail
	default:
		outcome.Status = StatusXPass
	}
	return outcome
}

// Errored builds the outcome of a check that could not run
func Errored(name string, err error) *Outcome {
	return &Outcome{
		Check:  name,
		Status: StatusError,
		Error:  err.Error(),
	}
}

func mismatches(res *exec.Result, expect Expectation) []string {
	var out []string
	if res.ExitCode != expect.ExitCode {
		out = append(out, fmt.Sprintf("exit code = %d, want %d", res.ExitCode, expect.ExitCode))
	}
	if expect.Stdout != nil && res.Stdout != *expect.Stdout {
		out = append(out, fmt.Sprintf("stdout = %q, want %q", res.Stdout, *expect.Stdout))
	}
	if expect.StdoutContains != "" && !strings.Contains(res.Stdout, expect.StdoutContains) {
		out = append(out, fmt.Sprintf("stdout = %q, want to contain %q", res.Stdout, expect.StdoutContains))
	}
	if expect.StderrContains != "" && !strings.Contains(res.Stderr, expect.StderrContains) {
		out = append(out, fmt.Sprintf("stderr = %q, want to contain %q", res.Stderr, expect.StderrContains))
	}
	return out
}
