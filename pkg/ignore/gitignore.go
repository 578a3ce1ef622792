// File: pkg/ignore/gitignore.go
package ignore

import (
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// GitIgnore evaluates patterns with full gitignore negation semantics.
type GitIgnore struct {
	gi *gitignore.GitIgnore
}

// NewGitIgnore compiles pattern lines with the gitignore engine.
func NewGitIgnore(lines []string) *GitIgnore {
	return &GitIgnore{gi: gitignore.CompileIgnoreLines(lines...)}
}

// MatchesPath reports whether path is ignored. Directories get a trailing
// slash so directory-only patterns apply to them.
func (g *GitIgnore) MatchesPath(path string, isDir bool) bool {
	rel := normalizePath(path)
	if rel == "" {
		return false
	}
	if isDir {
		rel += "/"
	}
	return g.gi.MatchesPath(filepath.FromSlash(rel))
}
