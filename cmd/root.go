package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"repoloader/pkg/config"
	"repoloader/pkg/loader"
	"repoloader/pkg/logging"
	"repoloader/pkg/version"
)

var logger = zap.NewNop()

// RootCmd loads a repository into a single document when called without subcommands.
var RootCmd = &cobra.Command{
	Use:   "repoloader [repo_path]",
	Short: "repoloader turns a repository into a single text document",
	Long: `repoloader walks a repository, skips ignored and binary files, and writes
the remaining files into one delimited document suitable as language model context.

Ignore patterns come from .gptignore (or a bundled default), .gitignore and --ignore.
Settings are read from <repo_path>/.repoloader.yaml, then REPOLOADER_* environment
variables (a .env file is loaded if present), then flags.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runLoad,
}

func init() {
	addLoadFlags(RootCmd.Flags())
}

// Execute runs the root command with the given logger.
func Execute(l *zap.Logger) error {
	if l != nil {
		logger = l
	}
	return RootCmd.Execute()
}

func addLoadFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.StringP("output", "o", def.Output, "output file")
	fs.StringP("preamble", "p", "", "file whose text replaces the default preamble")
	fs.StringP("config", "c", "", "config file (default \"<repo_path>/"+config.FileName+"\")")
	fs.StringSliceP("ignore", "i", nil, "extra ignore patterns")
	fs.String("engine", def.Engine, "ignore engine: builtin or gitignore")
	fs.Bool("negation", false, "honour \"!\" patterns in the builtin engine")
	fs.IntP("workers", "w", 0, "parallel file readers (0 = number of CPUs)")
	fs.Int64("max-size", 0, "skip files larger than this many KB (0 = unlimited)")
	fs.String("tree", "", "also write an ASCII tree of the included files to this path")
	fs.BoolP("quiet", "q", false, "do not print a summary")
	fs.Bool("debug", false, "enable debug logging")
}

// buildConfig layers defaults, the config file, the environment and the
// flags that were set explicitly.
func buildConfig(fs *pflag.FlagSet, args []string) (config.Config, error) {
	cfg := config.Default()
	if len(args) > 0 {
		cfg.Root = args[0]
	}

	path := filepath.Join(cfg.Root, config.FileName)
	if fs.Changed("config") {
		path, _ = fs.GetString("config")
	}
	cfg, err := config.Load(path, cfg)
	if err != nil {
		return cfg, err
	}

	cfg, err = config.ApplyEnv(cfg)
	if err != nil {
		return cfg, err
	}

	strs := map[string]*string{
		"output":   &cfg.Output,
		"preamble": &cfg.Preamble,
		"engine":   &cfg.Engine,
		"tree":     &cfg.Tree,
	}
	for name, dst := range strs {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}

	bools := map[string]*bool{
		"negation": &cfg.Negation,
		"quiet":    &cfg.Quiet,
		"debug":    &cfg.Debug,
	}
	for name, dst := range bools {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}

	if fs.Changed("workers") {
		cfg.Workers, _ = fs.GetInt("workers")
	}
	if fs.Changed("max-size") {
		cfg.MaxSizeKB, _ = fs.GetInt64("max-size")
	}
	if fs.Changed("ignore") {
		extra, _ := fs.GetStringSlice("ignore")
		cfg.Ignore = append(cfg.Ignore, extra...)
	}
	return cfg, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd.Flags(), args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Debug {
		debugLogger, err := logging.Setup(true, version.AppName, version.Version)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = debugLogger
	}

	res, err := loader.Execute(cfg, logger)
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		printSummary(cmd, res)
	}
	return nil
}

func printSummary(cmd *cobra.Command, res loader.Result) {
	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "Repository contents written to %s.\n", res.Output)

	s := res.Stats
	fmt.Fprintf(out, "%d files written, %d ignored, %d binary, %d empty", s.Written, s.Ignored, s.Binary, s.Empty)
	if s.Oversize > 0 {
		fmt.Fprintf(out, ", %d oversize", s.Oversize)
	}
	if s.Failed > 0 {
		color.New(color.FgYellow).Fprintf(out, ", %d unreadable", s.Failed)
	}
	fmt.Fprintln(out)

	if res.Tree != "" {
		fmt.Fprintf(out, "Tree written to %s.\n", res.Tree)
	}
}
