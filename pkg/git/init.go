package git

import (
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

const (
	fixtureAuthor = "cmdcheck"
	fixtureEmail  = "cmdcheck@localhost"
)

// InitResult describes a freshly initialised repository
type InitResult struct {
	Path      string
	CommitSHA string
}

// Init creates a repository in dir with a single empty commit on the default branch
func Init(logger *zap.Logger, dir string) (*InitResult, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, fmt.Errorf("git init failed: %w", err)
	}

	w, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	hash, err := w.Commit("initial commit", &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  fixtureAuthor,
			Email: fixtureEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initial commit failed: %w", err)
	}

	logger.Debug("Initialised git repository",
		zap.String("path", dir),
		zap.String("commit_sha", hash.String()))

	return &InitResult{Path: dir, CommitSHA: hash.String()}, nil
}
