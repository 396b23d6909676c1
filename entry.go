package main

import (
	"fmt"
	"io"
	"log/slog"

	"libedges/analyzer"
	"libedges/config"
	"libedges/relation"
)

const (
	scopeSubstring = "substring"
	scopeGlob      = "glob"
)

type options struct {
	Lang  string
	Scope string
}

func newExtractor(cfg *config.Config, opts options, out io.Writer) (*relation.Extractor, error) {
	a, err := analyzer.New(analyzer.Language(opts.Lang))
	if err != nil {
		return nil, err
	}

	scope, err := newScope(cfg, opts.Scope)
	if err != nil {
		return nil, err
	}

	return &relation.Extractor{
		Analyzer: a,
		Scope:    scope,
		Base:     cfg.Base,
		Out:      out,
		Logger:   slog.Default(),
	}, nil
}

// newScope picks the module scope; an include pattern in the config
// always means glob matching.
func newScope(cfg *config.Config, kind string) (relation.Scope, error) {
	if cfg.Include != "" {
		kind = scopeGlob
	}
	switch kind {
	case scopeSubstring:
		return relation.SubstringScope{Source: cfg.Source}, nil
	case scopeGlob:
		return relation.NewGlobScope(cfg.Source, cfg.Include)
	default:
		return nil, fmt.Errorf("unknown scope: %s", kind)
	}
}
