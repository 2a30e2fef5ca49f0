package fixture

import (
	"context"
	"os"
	"path/filepath"

	"github.com/justatest/cmdcheck/pkg/git"
	"go.uber.org/zap"
)

// CloneInto returns a fixture that clones the configured repository into a
// fresh temporary directory on every resolve. config.Destination is ignored.
func CloneInto(logger *zap.Logger, config *git.CloneConfig) Func {
	return func(ctx context.Context) (*Value, error) {
		root, err := os.MkdirTemp("", "cmdcheck-clone-*")
		if err != nil {
			return nil, err
		}
		value := &Value{cleanup: func() error { return os.RemoveAll(root) }}

		cloneConfig := *config
		cloneConfig.Destination = filepath.Join(root, "source")

		result, err := git.Clone(ctx, logger, &cloneConfig)
		if err != nil {
			_ = value.Close()
			return nil, err
		}

		value.Dir = result.Path
		value.Data = map[string]any{"commit": result.CommitSHA, "url": result.URL}
		return value, nil
	}
}
