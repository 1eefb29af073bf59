package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Ignore decides which paths under a root are left out of a watch.
type Ignore struct {
	matcher  gitignore.Matcher
	rootPath string
}

// NewIgnore builds an Ignore for rootPath. When useGitignore is set, the
// .gitignore files under rootPath are read; extra patterns use the same
// syntax and are always applied.
func NewIgnore(rootPath string, useGitignore bool, extra ...string) (*Ignore, error) {
	var patterns []gitignore.Pattern
	if useGitignore {
		read, err := gitignore.ReadPatterns(osfs.New(rootPath), []string{})
		if err != nil {
			return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
		}
		patterns = read
	}
	for _, p := range extra {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	return &Ignore{
		matcher:  gitignore.NewMatcher(patterns),
		rootPath: rootPath,
	}, nil
}

// IsIgnored checks if a path should be ignored. The root itself never is.
func (ig *Ignore) IsIgnored(path string, isDir bool) (bool, error) {
	if isDir && filepath.Base(path) == ".git" {
		return true, nil
	}

	relPath, err := filepath.Rel(ig.rootPath, path)
	if err != nil {
		return false, err
	}
	if relPath == "." {
		return false, nil
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(os.PathSeparator)) {
		return false, fmt.Errorf("%s is outside %s", path, ig.rootPath)
	}

	parts := strings.Split(relPath, string(os.PathSeparator))
	return ig.matcher.Match(parts, isDir), nil
}

// WalkDirs calls fn for root and every directory below it that is not
// ignored. Ignored directories are not descended into.
func (ig *Ignore) WalkDirs(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// entries can vanish mid-walk
			if os.IsNotExist(err) && path != root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}

		ignored, err := ig.IsIgnored(path, true)
		if err != nil {
			return err
		}
		if ignored {
			return filepath.SkipDir
		}
		return fn(path)
	})
}
