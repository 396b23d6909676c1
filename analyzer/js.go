package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	langJavaScript = sitter.NewLanguage(tree_sitter_javascript.Language())
	langTypeScript = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	langTSX        = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
)

// grammarFor returns the grammar for a script file, or nil when the file
// is not a script.
func grammarFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return langJavaScript
	case ".ts", ".mts", ".cts":
		return langTypeScript
	case ".tsx":
		return langTSX
	}
	return nil
}

// JSAnalyzer builds the import graph of a JavaScript/TypeScript tree.
type JSAnalyzer struct{}

func NewJSAnalyzer() *JSAnalyzer {
	return &JSAnalyzer{}
}

// Analyze scans every script under root, or root itself when it is a file.
func (a *JSAnalyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	files, err := listScripts(root)
	if err != nil {
		return nil, err
	}
	slog.Debug("scan script sources", "root", root, "files", len(files))

	parsers := make(map[*sitter.Language]*sitter.Parser)
	defer func() {
		for _, p := range parsers {
			p.Close()
		}
	}()

	resolver := newNodeResolver()
	result := &Result{}
	var leaves []string
	seenLeaf := make(map[string]bool)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lang := grammarFor(file)
		p, ok := parsers[lang]
		if !ok {
			p = sitter.NewParser()
			if err := p.SetLanguage(lang); err != nil {
				p.Close()
				return nil, fmt.Errorf("failed to load grammar for %s: %w", file, err)
			}
			parsers[lang] = p
		}

		specifiers, err := parseImports(p, file)
		if err != nil {
			return nil, err
		}

		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}
		module := Module{Source: file, Dependencies: make([]Dependency, 0, len(specifiers))}
		for _, specifier := range specifiers {
			dep, err := resolver.resolve(abs, specifier)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %q in %s: %w", specifier, file, err)
			}
			module.Dependencies = append(module.Dependencies, dep)

			switch dep.DependencyTypes[0] {
			case TypeLocal, TypeUnknown:
			default:
				if !seenLeaf[dep.Resolved] {
					seenLeaf[dep.Resolved] = true
					leaves = append(leaves, dep.Resolved)
				}
			}
		}
		result.Modules = append(result.Modules, module)
	}

	// Targets outside the tree are reported as modules that are not followed.
	for _, leaf := range leaves {
		result.Modules = append(result.Modules, Module{Source: leaf, Dependencies: []Dependency{}})
	}
	return result, nil
}

// listScripts expands root into the script files below it, skipping
// installed packages and version control directories.
func listScripts(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read source root: %w", err)
	}
	if !info.IsDir() {
		if grammarFor(root) == nil {
			return nil, fmt.Errorf("not a script file: %s", root)
		}
		return []string{root}, nil
	}

	matches, err := doublestar.FilepathGlob(QuoteGlob(root)+"/**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", root, err)
	}

	var files []string
	for _, match := range matches {
		rel, err := filepath.Rel(root, match)
		if err != nil || hasIgnoredElem(filepath.ToSlash(rel)) {
			continue
		}
		if grammarFor(match) != nil {
			files = append(files, match)
		}
	}
	sort.Strings(files)
	return files, nil
}

func parseImports(p *sitter.Parser, file string) ([]string, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	tree := p.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", file)
	}
	defer tree.Close()
	return importSpecifiers(tree.RootNode(), src), nil
}

// importSpecifiers collects, in source order, the module specifiers of
// static imports, re-exports, import-equals, require calls and dynamic
// imports with a literal argument. Type-only imports and exports are
// erased by the compiler and are skipped.
func importSpecifiers(root *sitter.Node, src []byte) []string {
	var specifiers []string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Kind() {
		case "import_statement", "export_statement", "import_require_clause":
			if isTypeOnly(n) {
				return
			}
			if s := n.ChildByFieldName("source"); s != nil && s.Kind() == "string" {
				specifiers = append(specifiers, stringValue(s, src))
			}
		case "call_expression":
			if s, ok := callSpecifier(n, src); ok {
				specifiers = append(specifiers, s)
			}
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return specifiers
}

// isTypeOnly reports whether a TypeScript import or export statement
// carries the "type" keyword: import type { A } from "x".
func isTypeOnly(n *sitter.Node) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "type":
			return true
		case "from", "{", "*", "=":
			return false
		}
	}
	return false
}

// callSpecifier matches require("x") and import("x").
func callSpecifier(n *sitter.Node, src []byte) (string, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch {
	case fn.Kind() == "import":
	case fn.Kind() == "identifier" && fn.Utf8Text(src) == "require":
	default:
		return "", false
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", false
	}
	first := args.NamedChild(0)
	if first.Kind() != "string" {
		return "", false
	}
	return stringValue(first, src), true
}

// stringValue strips the quotes from a string literal node.
func stringValue(n *sitter.Node, src []byte) string {
	text := n.Utf8Text(src)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
