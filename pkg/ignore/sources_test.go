package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseLines(t *testing.T) {
	got := ParseLines([]string{" a ", "# comment", "", "b", "a", "\tc\r"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}

func TestParseLinesEmpty(t *testing.T) {
	assert.Empty(t, ParseLines(nil))
	assert.Empty(t, ParseLines([]string{"", "#x", "   "}))
}

func TestResolveFallsBackToBundledDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.tmp\n# comment\n\n")

	patterns, err := Resolve(root, Sources{OutputPath: filepath.Join(root, "output.txt")}, nil)
	require.NoError(t, err)

	for _, p := range ParseLines(DefaultPatterns()) {
		assert.Contains(t, patterns, p)
	}
	assert.Contains(t, patterns, "*.tmp")
	assert.Contains(t, patterns, "/output.txt")
	assert.NotContains(t, patterns, "# comment")
}

func TestResolveUsesToolIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gptignore"), "custom/\n")

	patterns, err := Resolve(root, Sources{}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"custom/"}, patterns)
}

func TestResolveCustomFileNamesAndExtra(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".myignore"), "one\n")
	writeFile(t, filepath.Join(root, ".hgignore"), "two\none\n")

	patterns, err := Resolve(root, Sources{
		ToolIgnoreFile: ".myignore",
		VCSIgnoreFile:  ".hgignore",
		Extra:          []string{"three"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"two", "one", "three"}, patterns)
}

func TestResolveUnreadableIgnoreFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".gptignore"), 0o755))

	_, err := Resolve(root, Sources{}, nil)
	assert.Error(t, err)
}

func TestResolveDoesNotTouchTree(t *testing.T) {
	root := t.TempDir()

	_, err := Resolve(root, Sources{}, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOutputPattern(t *testing.T) {
	root := t.TempDir()

	p, ok := OutputPattern(root, filepath.Join(root, "output.txt"))
	require.True(t, ok)
	assert.Equal(t, "/output.txt", p)
	assert.True(t, Match([]string{p}, "output.txt"))
	assert.False(t, Match([]string{p}, "sub/output.txt"))

	p, ok = OutputPattern(root, filepath.Join(root, "out", "run[1].txt"))
	require.True(t, ok)
	assert.True(t, Match([]string{p}, "out/run[1].txt"))
	assert.False(t, Match([]string{p}, "out/run1.txt"))

	_, ok = OutputPattern(root, filepath.Join(filepath.Dir(root), "elsewhere.txt"))
	assert.False(t, ok)

	_, ok = OutputPattern(root, "")
	assert.False(t, ok)
}

func TestDefaultIgnoreFileIsCopy(t *testing.T) {
	a := DefaultIgnoreFile()
	require.NotEmpty(t, a)
	a[0] = 'X'
	assert.NotEqual(t, a[0], DefaultIgnoreFile()[0])
}
