// Package gitstage adds files rewritten by the scrubber to the git index.
package gitstage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/rs/zerolog/log"
)

// Stage adds paths to the index of the repository enclosing dir.
// Paths may be relative to the current directory or absolute.
func Stage(dir string, paths []string) error {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return fmt.Errorf("failed opening git repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed opening worktree: %w", err)
	}

	root, err := resolve(worktree.Filesystem.Root())
	if err != nil {
		return err
	}

	for _, path := range paths {
		rel, err := relativeTo(root, path)
		if err != nil {
			return err
		}
		if _, err := worktree.Add(rel); err != nil {
			return fmt.Errorf("failed staging %s: %w", path, err)
		}
		log.Debug().Str("file", rel).Msg("Staged file")
	}

	return nil
}

func relativeTo(root string, path string) (string, error) {
	abs, err := resolve(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("failed resolving %s against repository root: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside of the repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
