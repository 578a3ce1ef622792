// File: pkg/ignore/sources.go
package ignore

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Default ignore file names looked up at the traversal root.
const (
	DefaultToolIgnoreFile = ".gptignore"
	DefaultVCSIgnoreFile  = ".gitignore"
)

//go:embed default.gptignore
var defaultIgnoreFile []byte

// Sources names the inputs combined into one pattern list.
type Sources struct {
	ToolIgnoreFile string   // Tool ignore file name at the root; falls back to the bundled default.
	VCSIgnoreFile  string   // VCS ignore file name at the root; no fallback.
	OutputPath     string   // Output document path, excluded when it lives under the root.
	Extra          []string // Additional patterns from flags or config.
}

// DefaultIgnoreFile returns the bundled default tool ignore file.
func DefaultIgnoreFile() []byte {
	out := make([]byte, len(defaultIgnoreFile))
	copy(out, defaultIgnoreFile)
	return out
}

// DefaultPatterns returns the bundled default patterns, one per line.
func DefaultPatterns() []string {
	return splitLines(string(defaultIgnoreFile))
}

// Resolve reads the pattern sources at root and returns the cleaned pattern list.
// A missing tool ignore file is replaced by the bundled default; the installed
// bundle itself is never touched.
func Resolve(root string, src Sources, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src.ToolIgnoreFile == "" {
		src.ToolIgnoreFile = DefaultToolIgnoreFile
	}
	if src.VCSIgnoreFile == "" {
		src.VCSIgnoreFile = DefaultVCSIgnoreFile
	}

	var lines []string

	toolPath := filepath.Join(root, src.ToolIgnoreFile)
	toolLines, found, err := readIgnoreFile(toolPath)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Debug("Loaded tool ignore file", zap.String("filePath", toolPath), zap.Int("lineCount", len(toolLines)))
		lines = append(lines, toolLines...)
	} else {
		logger.Debug("Tool ignore file not found, using bundled default", zap.String("filePath", toolPath))
		lines = append(lines, DefaultPatterns()...)
	}

	vcsPath := filepath.Join(root, src.VCSIgnoreFile)
	vcsLines, found, err := readIgnoreFile(vcsPath)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Debug("Loaded VCS ignore file", zap.String("filePath", vcsPath), zap.Int("lineCount", len(vcsLines)))
		lines = append(lines, vcsLines...)
	}

	if pattern, ok := OutputPattern(root, src.OutputPath); ok {
		lines = append(lines, pattern)
	}
	lines = append(lines, src.Extra...)

	patterns := ParseLines(lines)
	logger.Debug("Resolved ignore patterns", zap.Int("totalPatterns", len(patterns)))
	return patterns, nil
}

// ParseLines trims lines, drops blanks and comments, and removes duplicates.
// The last occurrence of a duplicate is kept, which leaves last-match-wins
// evaluation unchanged.
func ParseLines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	seen := make(map[string]bool, len(cleaned))
	out := make([]string, 0, len(cleaned))
	for i := len(cleaned) - 1; i >= 0; i-- {
		if seen[cleaned[i]] {
			continue
		}
		seen[cleaned[i]] = true
		out = append(out, cleaned[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// OutputPattern returns an anchored literal pattern for output when it lies
// under root, so a run never ingests the output of a previous run.
func OutputPattern(root, output string) (string, bool) {
	if output == "" {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absOutput)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return "/" + escapeGlob(filepath.ToSlash(rel)), true
}

// readIgnoreFile reads pattern lines from path. A missing file is not an error.
func readIgnoreFile(path string) ([]string, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}
	return splitLines(string(content)), true, nil
}

func splitLines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}
