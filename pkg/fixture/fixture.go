// Package fixture provides named setup values that are handed to checks
// before they run, such as a scratch directory or a fresh git repository.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/justatest/cmdcheck/pkg/git"
	"go.uber.org/zap"
)

// Names of the built-in fixtures
const (
	TempDir = "tmpdir"
	GitRepo = "gitrepo"
	Empty   = "empty"
)

// ErrUnknownFixture is returned when no fixture is registered under a name
var ErrUnknownFixture = errors.New("unknown fixture")

// Value is what a fixture supplies to a check
type Value struct {
	// Dir is a working directory owned by the fixture, if any
	Dir string

	// Data holds arbitrary fixture-provided values
	Data map[string]any

	cleanup func() error
}

// Close releases whatever the fixture set up. It is safe to call on nil.
func (v *Value) Close() error {
	if v == nil || v.cleanup == nil {
		return nil
	}
	err := v.cleanup()
	v.cleanup = nil
	return err
}

// Func builds a fixture value
type Func func(ctx context.Context) (*Value, error)

// Registry maps fixture names to their setup functions
type Registry struct {
	mu       sync.RWMutex
	logger   *zap.Logger
	fixtures map[string]Func
}

// NewRegistry creates a registry holding the built-in fixtures
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		logger:   logger,
		fixtures: make(map[string]Func),
	}
	r.Register(TempDir, r.tempDir)
	r.Register(GitRepo, r.gitRepo)
	r.Register(Empty, emptyMapping)
	return r
}

// Register adds or replaces a fixture
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixtures[name] = fn
}

// Names returns the registered fixture names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fixtures))
	for name := range r.fixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve runs the named fixture and returns its value. The caller owns the
// value and must Close it.
func (r *Registry) Resolve(ctx context.Context, name string) (*Value, error) {
	r.mu.RLock()
	fn, ok := r.fixtures[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFixture, name)
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", name, err)
	}
	if value == nil {
		value = &Value{}
	}

	r.logger.Debug("Resolved fixture",
		zap.String("fixture", name),
		zap.String("dir", value.Dir))
	return value, nil
}

func (r *Registry) tempDir(ctx context.Context) (*Value, error) {
	dir, err := os.MkdirTemp("", "cmdcheck-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Value{
		Dir:     dir,
		cleanup: func() error { return os.RemoveAll(dir) },
	}, nil
}

func (r *Registry) gitRepo(ctx context.Context) (*Value, error) {
	value, err := r.tempDir(ctx)
	if err != nil {
		return nil, err
	}
	result, err := git.Init(r.logger, value.Dir)
	if err != nil {
		_ = value.Close()
		return nil, err
	}
	value.Data = map[string]any{"commit": result.CommitSHA}
	return value, nil
}

func emptyMapping(context.Context) (*Value, error) {
	return &Value{Data: map[string]any{}}, nil
}
