package suite

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/justatest/cmdcheck/pkg/check"
	"github.com/justatest/cmdcheck/pkg/exec"
	"github.com/justatest/cmdcheck/pkg/fixture"
	"go.uber.org/zap"
)

// Report summarises a suite run
type Report struct {
	Suite    string           `json:"suite"`
	Outcomes []*check.Outcome `json:"outcomes"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	XFailed  int              `json:"xfailed"`
	XPassed  int              `json:"xpassed"`
	Errored  int              `json:"errored"`
}

// OK reports whether no check failed, errored or unexpectedly passed
func (r *Report) OK() bool {
	return r.Failed == 0 && r.XPassed == 0 && r.Errored == 0
}

func (r *Report) add(o *check.Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case check.StatusPass:
		r.Passed++
	case check.StatusFail:
		r.Failed++
	case check.StatusXFail:
		r.XFailed++
	case check.StatusXPass:
		r.XPassed++
	case check.StatusError:
		r.Errored++
	}
}

// Runner executes the checks of a suite one at a time
type Runner struct {
	logger   *zap.Logger
	config   *Config
	runner   exec.CommandRunner
	fixtures *fixture.Registry
}

// NewRunner creates a new suite Runner
func NewRunner(logger *zap.Logger, config *Config, runner exec.CommandRunner, fixtures *fixture.Registry) *Runner {
	return &Runner{
		logger:   logger,
		config:   config,
		runner:   runner,
		fixtures: fixtures,
	}
}

// Execute runs every check in order and returns the report. An error is
// returned only when results cannot be written.
func (r *Runner) Execute(ctx context.Context, s *Suite) (*Report, error) {
	r.logger.Info("Starting suite",
		zap.String("suite", s.Name),
		zap.Int("checks", len(s.Checks)))

	for i := range s.Fixtures {
		f := &s.Fixtures[i]
		if f.Clone == nil {
			continue
		}
		r.logger.Debug("Registering suite fixture",
			zap.String("fixture", f.Name),
			zap.String("url", f.Clone.URL))
		r.fixtures.Register(f.Name, fixture.CloneInto(r.logger, f.Clone.CloneConfig()))
	}

	report := &Report{Suite: s.Name}
	for i := range s.Checks {
		c := &s.Checks[i]
		outcome := r.runCheck(ctx, c)
		report.add(outcome)

		if err := r.writeOutcome(outcome); err != nil {
			return report, fmt.Errorf("failed to write result for %s: %w", c.Name, err)
		}

		if outcome.Failed() && r.config.FailFast {
			r.logger.Warn("Stopping suite after failed check", zap.String("check", c.Name))
			break
		}
	}

	summary := "ok"
	if !report.OK() {
		summary = "failed"
	}
	if err := r.writeResult("summary", summary); err != nil {
		return report, fmt.Errorf("failed to write summary: %w", err)
	}

	r.logger.Info("Suite completed",
		zap.String("suite", s.Name),
		zap.Int("passed", report.Passed),
		zap.Int("failed", report.Failed),
		zap.Int("xfailed", report.XFailed),
		zap.Int("xpassed", report.XPassed),
		zap.Int("errored", report.Errored))

	return report, nil
}

func (r *Runner) runCheck(ctx context.Context, c *check.Check) *check.Outcome {
	dir := c.Dir
	name := c.Fixture
	if dir == "" && name == "" {
		name = r.config.DefaultFixture
	}

	if name != "" {
		value, err := r.fixtures.Resolve(ctx, name)
		if err != nil {
			r.logger.Error("Fixture setup failed", zap.String("check", c.Name), zap.Error(err))
			return check.Errored(c.Name, err)
		}
		defer func() {
			if err := value.Close(); err != nil {
				r.logger.Warn("Fixture cleanup failed", zap.String("check", c.Name), zap.Error(err))
			}
		}()
		dir = value.Dir
	}

	result, err := r.runner.Run(ctx, c.Invocation(dir))
	if err != nil {
		r.logger.Error("Check could not run", zap.String("check", c.Name), zap.Error(err))
		return check.Errored(c.Name, err)
	}

	outcome := check.Evaluate(c.Name, result, c.Expect)
	fields := []zap.Field{
		zap.String("check", c.Name),
		zap.String("status", string(outcome.Status)),
		zap.Int("exit_code", result.ExitCode),
	}
	if outcome.Failed() {
		r.logger.Warn("Check failed", append(fields, zap.Strings("mismatches", outcome.Mismatches))...)
	} else {
		r.logger.Info("Check finished", fields...)
	}
	return outcome
}

func (r *Runner) writeOutcome(o *check.Outcome) error {
	if r.config.ResultsPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	name := o.Check
	if o.Result != nil && o.Result.RunID != "" {
		name = o.Result.RunID
	}
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return r.writeResult(name+".json", string(data))
}

// writeResult writes a result file to the results directory
func (r *Runner) writeResult(name, value string) error {
	if r.config.ResultsPath == "" {
		return nil
	}
	if err := os.MkdirAll(r.config.ResultsPath, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.config.ResultsPath, name), []byte(value), 0644)
}
