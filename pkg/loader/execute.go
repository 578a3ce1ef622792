// File: pkg/loader/execute.go
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"repoloader/pkg/config"
	"repoloader/pkg/document"
	"repoloader/pkg/ignore"
	"repoloader/pkg/output"
)

// Result describes a completed run.
type Result struct {
	Root     string // Absolute traversal root.
	Output   string // Absolute path of the written document.
	Tree     string // Absolute path of the tree file, empty when none was written.
	Patterns int    // Number of resolved ignore patterns.
	Bytes    int64  // Size of the written document.
	Stats    Stats
}

// Execute loads the repository described by cfg into its output document.
// The document is written to a temporary file and only renamed into place
// once the terminator has been written.
func Execute(cfg config.Config, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result

	if err := cfg.Validate(); err != nil {
		return res, fmt.Errorf("invalid configuration: %w", err)
	}

	root, err := config.ResolveRoot(cfg.Root)
	if err != nil {
		return res, err
	}
	res.Root = root
	logger.Debug("Starting load", zap.String("root", root), zap.String("output", cfg.Output))

	preamble := document.DefaultPreamble
	if cfg.Preamble != "" {
		data, err := os.ReadFile(cfg.Preamble)
		if err != nil {
			return res, fmt.Errorf("failed to read preamble file: %w", err)
		}
		preamble = string(data)
	}

	outPath, err := filepath.Abs(cfg.Output)
	if err != nil {
		return res, fmt.Errorf("failed to get absolute output path: %w", err)
	}
	res.Output = outPath

	out, err := output.Create(outPath)
	if err != nil {
		return res, err
	}
	committed := false
	defer func() {
		if !committed {
			out.Abort()
		}
	}()

	// The output's companion files may live under the root too.
	extra := append([]string(nil), cfg.Ignore...)
	companions := []string{out.TempPath(), out.LockPath()}
	if cfg.Tree != "" {
		companions = append(companions, cfg.Tree, output.LockPath(cfg.Tree))
	}
	for _, path := range companions {
		if pattern, ok := ignore.OutputPattern(root, path); ok {
			extra = append(extra, pattern)
		}
	}
	patterns, err := ignore.Resolve(root, ignore.Sources{
		ToolIgnoreFile: cfg.ToolIgnoreFile,
		VCSIgnoreFile:  cfg.VCSIgnoreFile,
		OutputPath:     outPath,
		Extra:          extra,
	}, logger)
	if err != nil {
		return res, fmt.Errorf("failed to load ignore patterns: %w", err)
	}
	res.Patterns = len(patterns)

	matcher, err := ignore.NewMatcher(cfg.Engine, patterns, ignore.Options{Negation: cfg.Negation}, logger)
	if err != nil {
		return res, err
	}

	dw := document.NewWriter(out)
	if err := dw.WritePreamble(preamble); err != nil {
		return res, err
	}

	agg := NewAggregator(matcher, logger,
		WithWorkers(cfg.Workers),
		WithMaxFileSize(cfg.MaxFileSize()))
	res.Stats, err = agg.Run(root, out)
	if err != nil {
		logger.Error("Failed to write repository document", zap.String("outputFile", outPath), zap.Error(err))
		return res, fmt.Errorf("failed to aggregate files: %w", err)
	}

	if err := dw.WriteTerminator(); err != nil {
		return res, err
	}
	committed = true
	if err := out.Commit(); err != nil {
		return res, err
	}

	res.Bytes = dw.Written() + res.Stats.Bytes

	if cfg.Tree != "" {
		treePath, err := filepath.Abs(cfg.Tree)
		if err != nil {
			return res, fmt.Errorf("failed to get absolute tree path: %w", err)
		}
		if err := writeTree(treePath, filepath.Base(root), res.Stats.Files); err != nil {
			return res, fmt.Errorf("failed to write tree structure: %w", err)
		}
		res.Tree = treePath
		logger.Debug("Wrote tree structure", zap.String("treeFile", treePath))
	}

	logger.Info("Successfully wrote repository document",
		zap.String("outputFile", outPath),
		zap.Int("totalFiles", res.Stats.Written),
		zap.Int64("bytes", res.Bytes))
	return res, nil
}

func writeTree(path, rootName string, files []string) error {
	out, err := output.Create(path)
	if err != nil {
		return err
	}
	if _, err := out.Write([]byte(RenderTree(rootName, files))); err != nil {
		out.Abort()
		return err
	}
	return out.Commit()
}
