package relation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"libedges/analyzer"
)

// Scope decides which modules belong to the application source.
type Scope interface {
	Contains(modulePath string) (bool, error)
}

// SubstringScope keeps modules whose absolute path contains Source.
type SubstringScope struct {
	Source string
}

func (s SubstringScope) Contains(modulePath string) (bool, error) {
	abs, err := filepath.Abs(modulePath)
	if err != nil {
		return false, err
	}
	return strings.Contains(abs, s.Source), nil
}

// GlobScope keeps modules matching a doublestar pattern, tried against the
// absolute path and the path as reported.
type GlobScope struct {
	Pattern string
}

// NewGlobScope returns a scope over pattern. An empty pattern selects every
// file below source, or source alone when it is a file.
func NewGlobScope(source, pattern string) (GlobScope, error) {
	if pattern == "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			return GlobScope{}, err
		}
		pattern = filepath.ToSlash(analyzer.QuoteGlob(abs))
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			pattern += "/**/*"
		}
	}
	if !doublestar.ValidatePattern(pattern) {
		return GlobScope{}, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	return GlobScope{Pattern: pattern}, nil
}

func (s GlobScope) Contains(modulePath string) (bool, error) {
	abs, err := filepath.Abs(modulePath)
	if err != nil {
		return false, err
	}
	for _, p := range []string{abs, modulePath} {
		ok, err := doublestar.Match(s.Pattern, filepath.ToSlash(p))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
