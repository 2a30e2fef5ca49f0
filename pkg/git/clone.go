package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"
)

// CloneConfig holds configuration for git clone operation
type CloneConfig struct {
	URL         string
	Revision    string
	Depth       int
	Destination string
	AuthPath    string
}

// CloneResult holds the results of a git clone operation
type CloneResult struct {
	CommitSHA string
	URL       string
	Path      string
}

// Clone checks out a repository into the destination directory. Credentials
// are read from AuthPath when set; a path that cannot be read fails the clone.
func Clone(ctx context.Context, logger *zap.Logger, config *CloneConfig) (*CloneResult, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("clone URL is required")
	}

	var auth transport.AuthMethod
	if config.AuthPath != "" {
		var err error
		if auth, err = loadAuthFromPath(config.AuthPath); err != nil {
			return nil, fmt.Errorf("loading auth for %s: %w", config.URL, err)
		}
	}

	logger.Info("Starting git clone",
		zap.String("url", config.URL),
		zap.String("revision", config.Revision),
		zap.Int("depth", config.Depth),
		zap.Bool("auth", auth != nil),
		zap.String("destination", config.Destination))

	if err := os.MkdirAll(config.Destination, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{
		URL:  config.URL,
		Auth: auth,
	}
	if config.Depth > 0 {
		cloneOptions.Depth = config.Depth
	}

	repo, err := git.PlainCloneContext(ctx, config.Destination, false, cloneOptions)
	if err != nil {
		return nil, fmt.Errorf("git clone failed: %w", err)
	}

	var commitSHA string
	if config.Revision != "" {
		commitSHA, err = checkoutRevision(repo, config.Revision)
		if err != nil {
			return nil, fmt.Errorf("failed to checkout revision %s: %w", config.Revision, err)
		}
	} else {
		head, err := repo.Head()
		if err != nil {
			return nil, fmt.Errorf("failed to get HEAD: %w", err)
		}
		commitSHA = head.Hash().String()
	}

	logger.Info("Git clone completed successfully",
		zap.String("commit_sha", commitSHA),
		zap.String("url", config.URL))

	return &CloneResult{
		CommitSHA: commitSHA,
		URL:       config.URL,
		Path:      config.Destination,
	}, nil
}

// checkoutRevision checks out a specific revision (branch, tag, or commit)
func checkoutRevision(repo *git.Repository, revision string) (string, error) {
	w, err := repo.Worktree()
	if err != nil {
		return "", err
	}

	if len(revision) >= 7 && len(revision) <= 40 {
		if hash, err := repo.ResolveRevision(plumbing.Revision(revision)); err == nil {
			if err := w.Checkout(&git.CheckoutOptions{Hash: *hash}); err == nil {
				return hash.String(), nil
			}
		}
	}

	for _, ref := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(revision),
		plumbing.NewRemoteReferenceName("origin", revision),
		plumbing.NewTagReferenceName(revision),
	} {
		if err := w.Checkout(&git.CheckoutOptions{Branch: ref}); err == nil {
			head, err := repo.Head()
			if err != nil {
				return "", err
			}
			return head.Hash().String(), nil
		}
	}

	return "", fmt.Errorf("failed to checkout revision: %s", revision)
}

// loadAuthFromPath reads basic auth credentials from username/password files
func loadAuthFromPath(authPath string) (transport.AuthMethod, error) {
	username, err := os.ReadFile(filepath.Join(authPath, "username"))
	if err != nil {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}

	password, err := os.ReadFile(filepath.Join(authPath, "password"))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return &http.BasicAuth{
		Username: strings.TrimSpace(string(username)),
		Password: strings.TrimSpace(string(password)),
	}, nil
}
