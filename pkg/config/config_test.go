package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoloader/pkg/ignore"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "output.txt", cfg.Output)
	assert.Equal(t, ".gptignore", cfg.ToolIgnoreFile)
	assert.Equal(t, ".gitignore", cfg.VCSIgnoreFile)
	assert.Equal(t, ignore.EngineBuiltin, cfg.Engine)
	assert.False(t, cfg.Negation)
	assert.Zero(t, cfg.MaxFileSize())
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "partial file keeps defaults",
			content: "output: combined.txt\n" +
				"workers: 4\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "combined.txt", cfg.Output)
				assert.Equal(t, 4, cfg.Workers)
				assert.Equal(t, ".gptignore", cfg.ToolIgnoreFile)
				assert.Equal(t, ignore.EngineBuiltin, cfg.Engine)
			},
		},
		{
			name: "all keys",
			content: "output: out.md\n" +
				"preamble: intro.txt\n" +
				"tool_ignore_file: .llmignore\n" +
				"vcs_ignore_file: .hgignore\n" +
				"ignore: [\"*.lock\", dist/]\n" +
				"engine: gitignore\n" +
				"negation: true\n" +
				"workers: 2\n" +
				"max_size_kb: 512\n" +
				"tree: tree.txt\n" +
				"quiet: true\n" +
				"debug: true\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Config{
					Root:           ".",
					Output:         "out.md",
					Preamble:       "intro.txt",
					ToolIgnoreFile: ".llmignore",
					VCSIgnoreFile:  ".hgignore",
					Ignore:         []string{"*.lock", "dist/"},
					Engine:         ignore.EngineGitIgnore,
					Negation:       true,
					Workers:        2,
					MaxSizeKB:      512,
					Tree:           "tree.txt",
					Quiet:          true,
					Debug:          true,
				}, cfg)
				assert.Equal(t, int64(512*1024), cfg.MaxFileSize())
			},
		},
		{
			name:    "malformed",
			content: "workers: [not a number\n",
			wantErr: true,
		},
		{
			name:    "wrong type",
			content: "workers: many\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cfg, err := Load(path, Default())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName), Default())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"REPOLOADER_OUTPUT":      "env.txt",
		"REPOLOADER_ENGINE":      "gitignore",
		"REPOLOADER_NEGATION":    "true",
		"REPOLOADER_WORKERS":     " 3 ",
		"REPOLOADER_MAX_SIZE_KB": "10",
		"REPOLOADER_IGNORE":      "*.tmp,build/",
		"REPOLOADER_PREAMBLE":    "",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	base := Default()
	base.Preamble = "from-file.txt"
	base.Ignore = []string{"*.log"}

	cfg, err := applyEnv(base, lookup)
	require.NoError(t, err)

	assert.Equal(t, "env.txt", cfg.Output)
	assert.Equal(t, ignore.EngineGitIgnore, cfg.Engine)
	assert.True(t, cfg.Negation)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, int64(10), cfg.MaxSizeKB)
	assert.Equal(t, []string{"*.log", "*.tmp", "build/"}, cfg.Ignore)
	assert.Equal(t, "from-file.txt", cfg.Preamble, "empty variables are ignored")
}

func TestApplyEnvInvalid(t *testing.T) {
	for _, key := range []string{"REPOLOADER_WORKERS", "REPOLOADER_MAX_SIZE_KB", "REPOLOADER_DEBUG"} {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return "nope", true
				}
				return "", false
			}
			_, err := applyEnv(Default(), lookup)
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestApplyEnvFromProcess(t *testing.T) {
	t.Setenv("REPOLOADER_QUIET", "1")

	cfg, err := ApplyEnv(Default())
	require.NoError(t, err)
	assert.True(t, cfg.Quiet)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty output", func(c *Config) { c.Output = " " }},
		{"unknown engine", func(c *Config) { c.Engine = "regex" }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative size", func(c *Config) { c.MaxSizeKB = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Engine = "regex"
	assert.ErrorIs(t, cfg.Validate(), ignore.ErrUnknownEngine)
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	got, err := ResolveRoot(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))

	_, err = ResolveRoot(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrRootNotFound)

	_, err = ResolveRoot(file)
	assert.ErrorIs(t, err, ErrRootNotDir)
}
