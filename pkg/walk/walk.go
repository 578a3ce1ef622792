// Package walk enumerates the files of a directory tree in a deterministic order.
package walk

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotDirectory is returned when the traversal root is not a directory.
var ErrNotDirectory = errors.New("traversal root is not a directory")

// Candidate is a path considered for inclusion during traversal.
type Candidate struct {
	Path  string // Absolute path.
	Rel   string // Path relative to the traversal root, using OS separators.
	IsDir bool   // Set only for directories offered to the skip hook.
}

// Option configures a Walker.
type Option func(*Walker)

// WithSkipDir prunes every directory for which fn returns true.
func WithSkipDir(fn func(Candidate) bool) Option {
	return func(w *Walker) {
		w.skipDir = fn
	}
}

// Walker yields file candidates below a root directory.
//
// Top-level entries come in directory listing order. Inside a directory its
// files come first, then its subdirectories, recursively. Symlinked
// directories are never followed; special files are never yielded.
type Walker struct {
	logger  *zap.Logger
	skipDir func(Candidate) bool
}

// New returns a Walker.
func New(logger *zap.Logger, opts ...Option) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Walker{logger: logger}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type entryKind int

const (
	kindOther entryKind = iota
	kindFile
	kindDir
)

// Walk validates root and returns a lazy sequence of file candidates.
// Errors below the root are logged and the affected directory is skipped.
func (w *Walker) Walk(root string) (iter.Seq[Candidate], error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat traversal root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read traversal root: %w", err)
	}

	return func(yield func(Candidate) bool) {
		for _, entry := range entries {
			c := w.candidate(absRoot, filepath.Join(absRoot, entry.Name()))

			switch w.kind(c.Path, entry) {
			case kindDir:
				c.IsDir = true
				if w.skip(c) {
					continue
				}
				if !w.hasFiles(c.Path) {
					w.logger.Debug("Skipping directory without files", zap.String("directory", c.Rel))
					continue
				}
				if !w.walkDir(absRoot, c.Path, yield) {
					return
				}
			case kindFile:
				if !yield(c) {
					return
				}
			}
		}
	}, nil
}

// walkDir yields the files of dir, then descends into its subdirectories.
// It reports false once the consumer stops the iteration.
func (w *Walker) walkDir(root, dir string, yield func(Candidate) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("Failed to read directory", zap.String("directory", dir), zap.Error(err))
		if len(entries) == 0 {
			return true
		}
	}

	var subdirs []Candidate
	for _, entry := range entries {
		c := w.candidate(root, filepath.Join(dir, entry.Name()))

		switch w.kind(c.Path, entry) {
		case kindDir:
			c.IsDir = true
			subdirs = append(subdirs, c)
		case kindFile:
			if !yield(c) {
				return false
			}
		}
	}

	for _, c := range subdirs {
		if w.skip(c) {
			continue
		}
		if !w.walkDir(root, c.Path, yield) {
			return false
		}
	}
	return true
}

// hasFiles reports whether any non-directory entry exists below dir.
func (w *Walker) hasFiles(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

func (w *Walker) skip(c Candidate) bool {
	if w.skipDir == nil || !w.skipDir(c) {
		return false
	}
	w.logger.Debug("Skipping ignored directory", zap.String("directory", c.Rel))
	return true
}

func (w *Walker) candidate(root, path string) Candidate {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return Candidate{Path: path, Rel: rel}
}

// kind classifies an entry. Symlinks count as files only when they resolve
// to a regular file.
func (w *Walker) kind(path string, entry fs.DirEntry) entryKind {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return kindDir
	case mode.IsRegular():
		return kindFile
	case mode&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			w.logger.Debug("Skipping broken symlink", zap.String("path", path), zap.Error(err))
			return kindOther
		}
		if info.Mode().IsRegular() {
			return kindFile
		}
		w.logger.Debug("Not following symlink", zap.String("path", path))
		return kindOther
	default:
		return kindOther
	}
}
