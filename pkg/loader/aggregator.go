// Package loader turns a directory tree into a combined repository document.
package loader

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"go.uber.org/zap"

	"repoloader/pkg/classify"
	"repoloader/pkg/document"
	"repoloader/pkg/ignore"
	"repoloader/pkg/walk"
)

// Stats counts what happened to the candidates of a run.
type Stats struct {
	Candidates int      // Files yielded by the walker.
	Written    int      // Records written to the sink.
	Ignored    int      // Matched an ignore pattern.
	Empty      int      // No content after decoding.
	Binary     int      // Failed the readability check.
	Oversize   int      // Larger than the size limit.
	Failed     int      // Could not be read.
	Bytes      int64    // Bytes of records written to the sink.
	Files      []string // Relative paths of the written records, in output order.
}

type outcome int

const (
	outcomeRecord outcome = iota
	outcomeIgnored
	outcomeEmpty
	outcomeBinary
	outcomeOversize
	outcomeFailed
)

type fileResult struct {
	index   int
	outcome outcome
	record  document.FileRecord
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithWorkers sets the number of parallel readers. Zero or less uses runtime.NumCPU.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithMaxFileSize skips files larger than limit bytes. Zero means no limit.
func WithMaxFileSize(limit int64) Option {
	return func(a *Aggregator) {
		a.maxFileSize = limit
	}
}

// Aggregator walks a root and writes one record per included file.
type Aggregator struct {
	matcher     ignore.Matcher
	logger      *zap.Logger
	workers     int
	maxFileSize int64
}

// NewAggregator returns an Aggregator that excludes paths matched by matcher.
// A nil matcher excludes nothing.
func NewAggregator(matcher ignore.Matcher, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{matcher: matcher, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers <= 0 {
		a.workers = runtime.NumCPU()
		logger.Debug("Adjusted worker count", zap.Int("workers", a.workers))
	}
	return a
}

// Run writes the records of every included file under root to sink, in walk
// order. It writes neither preamble nor terminator. Unreadable files are
// logged and skipped; a failing sink aborts the run.
func (a *Aggregator) Run(root string, sink io.Writer) (Stats, error) {
	var stats Stats

	walker := walk.New(a.logger, walk.WithSkipDir(func(c walk.Candidate) bool {
		return a.ignored(c.Rel, true)
	}))
	candidates, err := walker.Walk(root)
	if err != nil {
		return stats, err
	}

	dw := document.NewWriter(sink)
	emit := func(res fileResult) error {
		stats.Candidates++
		switch res.outcome {
		case outcomeIgnored:
			stats.Ignored++
		case outcomeEmpty:
			stats.Empty++
		case outcomeBinary:
			stats.Binary++
		case outcomeOversize:
			stats.Oversize++
		case outcomeFailed:
			stats.Failed++
		case outcomeRecord:
			if err := dw.WriteRecord(res.record); err != nil {
				return err
			}
			stats.Written++
			stats.Files = append(stats.Files, res.record.Path)
		}
		return nil
	}

	err = processOrdered(candidates, a.workers, a.process, emit, a.logger)
	stats.Bytes = dw.Written()
	if err != nil {
		a.logger.Error("Failed to write to sink", zap.Error(err))
		return stats, err
	}

	a.logger.Debug("Aggregation finished",
		zap.Int("candidates", stats.Candidates),
		zap.Int("written", stats.Written),
		zap.Int("ignored", stats.Ignored),
		zap.Int("empty", stats.Empty),
		zap.Int("binary", stats.Binary),
		zap.Int("oversize", stats.Oversize),
		zap.Int("failed", stats.Failed))
	return stats, nil
}

// process decides the fate of a single candidate.
func (a *Aggregator) process(c walk.Candidate, logger *zap.Logger) fileResult {
	if a.ignored(c.Rel, false) {
		logger.Debug("Skipping ignored file", zap.String("path", c.Rel))
		return fileResult{outcome: outcomeIgnored}
	}

	if a.maxFileSize > 0 {
		info, err := os.Stat(c.Path)
		if err != nil {
			logger.Warn("Failed to stat file", zap.String("path", c.Path), zap.Error(err))
			return fileResult{outcome: outcomeFailed}
		}
		if info.Size() > a.maxFileSize {
			logger.Debug("Skipping oversize file",
				zap.String("path", c.Rel),
				zap.Int64("sizeBytes", info.Size()),
				zap.Int64("maxBytes", a.maxFileSize))
			return fileResult{outcome: outcomeOversize}
		}
	}

	content, err := readContent(c.Path)
	if err != nil {
		logger.Warn("Failed to read file", zap.String("path", c.Path), zap.Error(err))
		return fileResult{outcome: outcomeFailed}
	}
	if content == "" {
		logger.Debug("Skipping empty file", zap.String("path", c.Rel))
		return fileResult{outcome: outcomeEmpty}
	}
	if !classify.IsReadable(content) {
		logger.Debug("Skipping unreadable file",
			zap.String("path", c.Rel),
			zap.Float64("printableRatio", classify.Ratio(content)))
		return fileResult{outcome: outcomeBinary}
	}

	return fileResult{
		outcome: outcomeRecord,
		record:  document.FileRecord{Path: c.Rel, Content: content},
	}
}

func (a *Aggregator) ignored(rel string, isDir bool) bool {
	return a.matcher != nil && a.matcher.MatchesPath(rel, isDir)
}

func readContent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading file %s: %w", path, err)
	}
	return classify.Decode(data), nil
}
