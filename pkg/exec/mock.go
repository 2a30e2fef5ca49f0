package exec

import (
	"context"
	"fmt"
	"strings"
)

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	// Invocations stores all executed invocations for verification
	Invocations []Invocation

	// Results maps command signatures to their results
	Results map[string]*Result

	// Errors maps command signatures to their errors
	Errors map[string]error

	// DefaultResult is returned when no specific result is configured
	DefaultResult *Result

	// DefaultError is returned when no specific error is configured
	DefaultError error
}

// NewMockCommandRunner creates a new mock command runner
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Invocations: make([]Invocation, 0),
		Results:     make(map[string]*Result),
		Errors:      make(map[string]error),
	}
}

// Run records the invocation and returns the configured outcome
func (m *MockCommandRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	m.Invocations = append(m.Invocations, inv)

	signature := inv.String()

	if err, exists := m.Errors[signature]; exists {
		return nil, err
	}

	if res, exists := m.Results[signature]; exists {
		return m.stamp(res, inv), nil
	}

	if m.DefaultError != nil {
		return nil, m.DefaultError
	}
	if m.DefaultResult != nil {
		return m.stamp(m.DefaultResult, inv), nil
	}
	return m.stamp(&Result{}, inv), nil
}

// SetResult configures the exit code and output for a specific command
func (m *MockCommandRunner) SetResult(exitCode int, stdout, stderr string, args ...string) {
	m.Results[strings.Join(args, " ")] = &Result{
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// SetError configures the error for a specific command
func (m *MockCommandRunner) SetError(err error, args ...string) {
	m.Errors[strings.Join(args, " ")] = err
}

// GetLastInvocation returns the last executed invocation
func (m *MockCommandRunner) GetLastInvocation() (Invocation, bool) {
	if len(m.Invocations) == 0 {
		return Invocation{}, false
	}
	return m.Invocations[len(m.Invocations)-1], true
}

// Reset clears all recorded invocations and configurations
func (m *MockCommandRunner) Reset() {
	m.Invocations = make([]Invocation, 0)
	m.Results = make(map[string]*Result)
	m.Errors = make(map[string]error)
	m.DefaultResult = nil
	m.DefaultError = nil
}

// AssertCommandExecuted checks if a specific command was executed
func (m *MockCommandRunner) AssertCommandExecuted(args ...string) bool {
	want := strings.Join(args, " ")
	for _, inv := range m.Invocations {
		if inv.String() == want {
			return true
		}
	}
	return false
}

// String returns a string representation of all executed commands
func (m *MockCommandRunner) String() string {
	var result []string
	for i, inv := range m.Invocations {
		result = append(result, fmt.Sprintf("%d: %s", i+1, inv))
	}
	return strings.Join(result, "\n")
}

// stamp copies a canned result and fills in the fields a real run would set
func (m *MockCommandRunner) stamp(res *Result, inv Invocation) *Result {
	out := *res
	out.RunID = fmt.Sprintf("mock-%d", len(m.Invocations))
	out.Args = inv.Args()
	out.Dir = inv.Dir()
	return &out
}
