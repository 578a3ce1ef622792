// Package ignore decides which paths of a tree are excluded from the combined
// document. It parses gitignore-style pattern lines, compiles them to regular
// expressions and evaluates relative paths against them.
package ignore

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Engine names accepted by NewMatcher.
const (
	EngineBuiltin   = "builtin"
	EngineGitIgnore = "gitignore"
)

// ErrUnknownEngine is returned by NewMatcher for an unsupported engine name.
var ErrUnknownEngine = errors.New("unknown ignore engine")

// Matcher reports whether a path relative to the traversal root is ignored.
type Matcher interface {
	MatchesPath(path string, isDir bool) bool
}

// Pattern is one compiled ignore rule.
type Pattern struct {
	Line    string // Original pattern line.
	LineNo  int    // Position in the pattern list (1-based).
	Negate  bool   // Line started with '!'.
	DirOnly bool   // Line ended with '/'.
	Literal bool   // Glob failed to compile and is matched as plain text.

	re       *regexp.Regexp
	text     string
	anchored bool
}

// Options controls Set evaluation.
type Options struct {
	// Negation honours '!' lines with last-match-wins ordering. When false
	// '!' lines are dropped and a path is ignored if any pattern matches.
	Negation bool
}

// Set is an immutable collection of compiled ignore patterns.
type Set struct {
	patterns []*Pattern
	negation bool
	logger   *zap.Logger
}

// NewSet compiles pattern lines into a Set. Blank and comment lines are skipped;
// malformed globs are kept as literal text rather than failing the whole set.
func NewSet(lines []string, opts Options, logger *zap.Logger) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Set{
		patterns: make([]*Pattern, 0, len(lines)),
		negation: opts.Negation,
		logger:   logger,
	}

	for i, line := range lines {
		p := compilePattern(line, i+1, logger)
		if p == nil {
			continue
		}
		if p.Negate && !s.negation {
			logger.Debug("Dropping negated pattern", zap.String("pattern", line), zap.Int("lineNo", i+1))
			continue
		}
		s.patterns = append(s.patterns, p)
	}

	logger.Debug("Compiled ignore set",
		zap.Int("patternCount", len(s.patterns)),
		zap.Bool("negation", s.negation))
	return s
}

// NewMatcher builds the Matcher for the named engine.
func NewMatcher(engine string, lines []string, opts Options, logger *zap.Logger) (Matcher, error) {
	switch engine {
	case "", EngineBuiltin:
		return NewSet(lines, opts, logger), nil
	case EngineGitIgnore:
		return NewGitIgnore(lines), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Match reports whether relativePath is ignored by any of patterns.
// A trailing slash marks relativePath as a directory.
func Match(patterns []string, relativePath string) bool {
	isDir := strings.HasSuffix(filepath.ToSlash(relativePath), "/")
	return NewSet(patterns, Options{}, nil).MatchesPath(relativePath, isDir)
}

// Len returns the number of active patterns.
func (s *Set) Len() int {
	return len(s.patterns)
}

// MatchesPath reports whether path is ignored.
func (s *Set) MatchesPath(path string, isDir bool) bool {
	matched, _ := s.MatchesPathWithPattern(path, isDir)
	return matched
}

// MatchesPathWithPattern reports whether path is ignored and which pattern decided it.
//
// Ancestor directories are evaluated first: once a directory is excluded
// nothing beneath it can be re-included.
func (s *Set) MatchesPathWithPattern(path string, isDir bool) (bool, *Pattern) {
	rel := normalizePath(path)
	if rel == "" || len(s.patterns) == 0 {
		return false, nil
	}

	for i := 0; i < len(rel); i++ {
		if rel[i] != '/' {
			continue
		}
		if matched, p := s.decide(rel[:i], true); matched {
			return true, p
		}
	}
	return s.decide(rel, isDir)
}

// decide evaluates one path level without looking at its ancestors.
func (s *Set) decide(rel string, isDir bool) (bool, *Pattern) {
	matched := false
	var decidedBy *Pattern

	for _, p := range s.patterns {
		if !p.matches(rel, isDir) {
			continue
		}
		if !s.negation {
			return true, p
		}
		matched = !p.Negate
		decidedBy = p
	}

	return matched, decidedBy
}

// compilePattern compiles one line. It returns nil for blank and comment lines.
func compilePattern(line string, lineNo int, logger *zap.Logger) *Pattern {
	pl, ok := parsePatternLine(line)
	if !ok {
		return nil
	}

	p := &Pattern{
		Line:     line,
		LineNo:   lineNo,
		Negate:   pl.negate,
		DirOnly:  pl.dirOnly,
		anchored: pl.anchored,
	}

	re, err := regexp.Compile(anchorPattern(globToRegex(pl.glob), pl.anchored))
	if err != nil {
		logger.Warn("Invalid ignore pattern, matching it literally",
			zap.String("pattern", line),
			zap.Int("lineNo", lineNo),
			zap.Error(err))
		p.Literal = true
		p.text = pl.glob
		return p
	}

	p.re = re
	return p
}

// matches reports whether the pattern matches rel itself.
func (p *Pattern) matches(rel string, isDir bool) bool {
	if p.DirOnly && !isDir {
		return false
	}
	if p.Literal {
		if p.anchored {
			return rel == p.text
		}
		return rel == p.text || strings.HasSuffix(rel, "/"+p.text)
	}
	return p.re.MatchString(rel)
}

// normalizePath converts OS-specific separators to forward slashes and
// strips leading "./" and trailing slashes.
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.Trim(path, "/")
	if path == "." {
		return ""
	}
	return path
}
