// File: pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"repoloader/pkg/ignore"
)

// FileName is the config file looked up in the repository root.
const FileName = ".repoloader.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REPOLOADER_"

var (
	// ErrRootNotFound is returned when the repository root does not exist.
	ErrRootNotFound = errors.New("repository root not found")
	// ErrRootNotDir is returned when the repository root is not a directory.
	ErrRootNotDir = errors.New("repository root is not a directory")
)

// Config holds the options of a load run.
type Config struct {
	Root           string   `yaml:"-"`
	Output         string   `yaml:"output"`
	Preamble       string   `yaml:"preamble"`
	ToolIgnoreFile string   `yaml:"tool_ignore_file"`
	VCSIgnoreFile  string   `yaml:"vcs_ignore_file"`
	Ignore         []string `yaml:"ignore"`
	Engine         string   `yaml:"engine"`
	Negation       bool     `yaml:"negation"`
	Workers        int      `yaml:"workers"`
	MaxSizeKB      int64    `yaml:"max_size_kb"`
	Tree           string   `yaml:"tree"`
	Quiet          bool     `yaml:"quiet"`
	Debug          bool     `yaml:"debug"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Root:           ".",
		Output:         "output.txt",
		ToolIgnoreFile: ignore.DefaultToolIgnoreFile,
		VCSIgnoreFile:  ignore.DefaultVCSIgnoreFile,
		Engine:         ignore.EngineBuiltin,
	}
}

// Load merges the YAML file at path over cfg.
// A missing file leaves cfg unchanged; a malformed one is an error.
func Load(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys absent from the file keep their current values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads .env from the working directory if present, then applies
// REPOLOADER_* variables over cfg.
func ApplyEnv(cfg Config) (Config, error) {
	_ = godotenv.Load()
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	strs := map[string]*string{
		"OUTPUT":           &cfg.Output,
		"PREAMBLE":         &cfg.Preamble,
		"TOOL_IGNORE_FILE": &cfg.ToolIgnoreFile,
		"VCS_IGNORE_FILE":  &cfg.VCSIgnoreFile,
		"ENGINE":           &cfg.Engine,
		"TREE":             &cfg.Tree,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"NEGATION": &cfg.Negation,
		"QUIET":    &cfg.Quiet,
		"DEBUG":    &cfg.Debug,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return cfg, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
			}
			*dst = b
		}
	}

	if v, ok := get("WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %sWORKERS %q: %w", EnvPrefix, v, err)
		}
		cfg.Workers = n
	}
	if v, ok := get("MAX_SIZE_KB"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %sMAX_SIZE_KB %q: %w", EnvPrefix, v, err)
		}
		cfg.MaxSizeKB = n
	}
	if v, ok := get("IGNORE"); ok {
		cfg.Ignore = append(cfg.Ignore, strings.Split(v, ",")...)
	}
	return cfg, nil
}

// Validate checks option values. It does not touch the filesystem.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	switch c.Engine {
	case ignore.EngineBuiltin, ignore.EngineGitIgnore:
	default:
		return fmt.Errorf("%w: %q", ignore.ErrUnknownEngine, c.Engine)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MaxSizeKB < 0 {
		return fmt.Errorf("max_size_kb must be >= 0, got %d", c.MaxSizeKB)
	}
	return nil
}

// MaxFileSize returns the size limit in bytes, 0 meaning unlimited.
func (c Config) MaxFileSize() int64 {
	return c.MaxSizeKB * 1024
}

// ResolveRoot returns the absolute repository root.
func ResolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRootNotFound, abs)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDir, abs)
	}
	return abs, nil
}
