// File: pkg/ignore/patterns.go
package ignore

import (
	"regexp"
	"strings"
)

// patternLine is one ignore line after comment, negation and escape handling.
type patternLine struct {
	glob     string // Glob body without leading or trailing slashes.
	negate   bool   // Line started with '!'.
	anchored bool   // Pattern is relative to the root rather than any depth.
	dirOnly  bool   // Line ended with '/'.
}

// parsePatternLine strips the gitignore syntax around a glob body.
// It reports false for blank lines, comments and lines with an empty body.
func parsePatternLine(line string) (patternLine, bool) {
	trimmed := strings.TrimSpace(line)

	// Ignore empty lines and comments.
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return patternLine{}, false
	}

	var pl patternLine
	switch {
	case strings.HasPrefix(trimmed, `\#`), strings.HasPrefix(trimmed, `\!`):
		trimmed = trimmed[1:]
	case strings.HasPrefix(trimmed, "!"):
		pl.negate = true
		trimmed = trimmed[1:]
	}

	if strings.HasSuffix(trimmed, "/") {
		pl.dirOnly = true
		trimmed = strings.TrimRight(trimmed, "/")
	}
	if strings.HasPrefix(trimmed, "/") {
		pl.anchored = true
		trimmed = strings.TrimLeft(trimmed, "/")
	}
	// A slash anywhere else also ties the pattern to the root.
	if strings.Contains(trimmed, "/") {
		pl.anchored = true
	}

	if trimmed == "" {
		return patternLine{}, false
	}
	pl.glob = trimmed
	return pl, true
}

// globToRegex converts a glob body into a regular expression body.
// '*' and '?' never cross a '/', "**" spans any number of directories.
func globToRegex(glob string) string {
	var b strings.Builder

	for i := 0; i < len(glob); i++ {
		c := glob[i]
		atSegmentStart := i == 0 || glob[i-1] == '/'

		switch {
		case c == '*' && atSegmentStart && strings.HasPrefix(glob[i:], "**/"):
			b.WriteString(`(?:.*/)?`)
			i += 2
		case c == '*' && atSegmentStart && glob[i:] == "**":
			b.WriteString(`.*`)
			i++
		case c == '*':
			for i+1 < len(glob) && glob[i+1] == '*' {
				i++
			}
			b.WriteString(`[^/]*`)
		case c == '?':
			b.WriteString(`[^/]`)
		case c == '[':
			end := charClassEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(charClassToRegex(glob[i+1 : end]))
			i = end
		case c == '\\' && i+1 < len(glob):
			i++
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		default:
			b.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}

	return b.String()
}

// anchorPattern wraps a regex body so it matches a whole relative path.
func anchorPattern(body string, anchored bool) string {
	if anchored {
		return "^" + body + "$"
	}
	return "^(?:.*/)?" + body + "$"
}

// charClassEnd returns the index of the ']' closing the class opened at start, or -1.
func charClassEnd(glob string, start int) int {
	i := start + 1
	if i < len(glob) && (glob[i] == '!' || glob[i] == '^') {
		i++
	}
	// A leading ']' is a literal member of the class.
	if i < len(glob) && glob[i] == ']' {
		i++
	}
	for ; i < len(glob); i++ {
		if glob[i] == ']' {
			return i
		}
	}
	return -1
}

// charClassToRegex converts the inside of a glob class into a regex class.
// Both '!' and '^' negate. Negated classes never match '/'.
func charClassToRegex(inner string) string {
	var b strings.Builder
	b.WriteByte('[')

	if strings.HasPrefix(inner, "!") || strings.HasPrefix(inner, "^") {
		b.WriteString(`^/`)
		inner = inner[1:]
	}

	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '\\', '[', ']':
			b.WriteByte('\\')
		}
		b.WriteByte(inner[i])
	}

	b.WriteByte(']')
	return b.String()
}

// escapeGlob escapes glob metacharacters so name matches only itself.
func escapeGlob(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
