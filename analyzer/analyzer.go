package analyzer

import (
	"context"
	"fmt"
)

// Analyzer loads the dependency graph rooted at a source directory.
type Analyzer interface {
	Analyze(ctx context.Context, root string) (*Result, error)
}

// Language selects an Analyzer binding.
type Language string

const (
	LangJS Language = "js"
	LangGo Language = "go"
)

// New returns the analyzer registered for lang.
func New(lang Language) (Analyzer, error) {
	switch lang {
	case LangJS:
		return NewJSAnalyzer(), nil
	case LangGo:
		return NewGoAnalyzer(), nil
	default:
		return nil, fmt.Errorf("no analyzer for language: %s", lang)
	}
}
