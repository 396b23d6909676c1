package relation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"libedges/analyzer"
)

// Extractor runs an analyzer over a source tree and emits the edges that
// leave the application for external libraries.
type Extractor struct {
	Analyzer analyzer.Analyzer
	Scope    Scope
	Base     string
	Out      io.Writer
	Logger   *slog.Logger
}

// Extract analyzes source and writes every relation to Out. Relations are
// only written once the whole graph has been processed.
func (e *Extractor) Extract(ctx context.Context, source string) (int, error) {
	result, err := e.Analyzer.Analyze(ctx, source)
	if err != nil {
		return 0, fmt.Errorf("failed to analyze %s: %w", source, err)
	}

	relations, err := Build(result, e.Scope, e.Base)
	if err != nil {
		return 0, err
	}

	w := NewJSONLWriter(e.Out)
	for i, rel := range relations {
		if err := w.Write(rel); err != nil {
			return i, fmt.Errorf("failed to write relation: %w", err)
		}
	}
	return len(relations), nil
}

// Run is Extract with every failure logged instead of returned.
func (e *Extractor) Run(ctx context.Context, source string) int {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n, err := e.Extract(ctx, source)
	if err != nil {
		logger.Error("extraction failed", "source", source, "error", err)
		return n
	}
	logger.Debug("relations emitted", "source", source, "count", n)
	return n
}
