package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// writeTree creates files under root from a path -> content map.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func parseSpecifiers(t *testing.T, lang *sitter.Language, src string) []string {
	t.Helper()
	p := sitter.NewParser()
	defer p.Close()
	require.NoError(t, p.SetLanguage(lang))
	tree := p.Parse([]byte(src), nil)
	require.NotNil(t, tree)
	defer tree.Close()
	return importSpecifiers(tree.RootNode(), []byte(src))
}

func TestImportSpecifiersJavaScript(t *testing.T) {
	src := `
import a from "a";
import "side-effect";
export { b } from './b';
export * from '../c';
const d = require("d");
async function load() {
  return import("e");
}
const notLiteral = require(name);
const notRequire = load("f");
`
	got := parseSpecifiers(t, langJavaScript, src)
	assert.Equal(t, []string{"a", "side-effect", "./b", "../c", "d", "e"}, got)
}

func TestImportSpecifiersTypeScript(t *testing.T) {
	src := `
import type { Foo } from './types';
import type Bar from "events";
export type { Baz } from './baz';
import fs = require("fs");
import * as path from 'node:path';
import { type Qux, quux } from './qux';
export const x: Foo = 1;
`
	got := parseSpecifiers(t, langTypeScript, src)
	assert.Equal(t, []string{"fs", "node:path", "./qux"}, got)
}

func TestGrammarFor(t *testing.T) {
	assert.Equal(t, langJavaScript, grammarFor("a.mjs"))
	assert.Equal(t, langTypeScript, grammarFor("a.ts"))
	assert.Equal(t, langTSX, grammarFor("a.tsx"))
	assert.Nil(t, grammarFor("a.json"))
	assert.Nil(t, grammarFor("README.md"))
}

const scriptA = `import _ from 'lodash'
import { readFile } from 'node:fs/promises'
import type { Foo } from './types'
export * from './b'
const pad = require('left-pad')
async function f() { return import('vitest') }
import missing from 'not-installed'
`

func TestJSAnalyzerAnalyze(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"package.json":                     `{"dependencies": {"lodash": "^4"}, "devDependencies": {"vitest": "^1"}}`,
		"node_modules/lodash/package.json": `{"main": "lodash.js"}`,
		"node_modules/lodash/lodash.js":    `module.exports = {}`,
		"node_modules/vitest/index.mjs":    `export default {}`,
		"node_modules/left-pad/index.js":   `module.exports = () => {}`,
		"src/a.ts":                         scriptA,
		"src/b.js":                         `module.exports = require("path")`,
		"src/types.ts":                     `export type Foo = string`,
		"src/readme.md":                    `import x from 'nope'`,
		"src/node_modules/x/x.js":          `require("fs")`,
	})
	src := filepath.Join(root, "src")

	result, err := NewJSAnalyzer().Analyze(context.Background(), src)
	require.NoError(t, err)

	lodash := filepath.Join(root, "node_modules", "lodash", "lodash.js")
	leftPad := filepath.Join(root, "node_modules", "left-pad", "index.js")
	vitest := filepath.Join(root, "node_modules", "vitest", "index.mjs")

	require.Len(t, result.Modules, 8)
	a := result.Modules[0]
	assert.Equal(t, filepath.Join(src, "a.ts"), a.Source)
	assert.Equal(t, []Dependency{
		{Module: "lodash", Resolved: lodash, DependencyTypes: []string{TypeNPM}},
		{Module: "node:fs/promises", Resolved: "fs/promises", DependencyTypes: []string{TypeCore}},
		{Module: "./b", Resolved: filepath.Join(src, "b.js"), DependencyTypes: []string{TypeLocal}},
		{Module: "left-pad", Resolved: leftPad, DependencyTypes: []string{TypeNPMNoPkg}},
		{Module: "vitest", Resolved: vitest, DependencyTypes: []string{TypeNPMDev}},
		{Module: "not-installed", Resolved: "not-installed", DependencyTypes: []string{TypeUnknown}},
	}, a.Dependencies)

	b := result.Modules[1]
	assert.Equal(t, filepath.Join(src, "b.js"), b.Source)
	assert.Equal(t, []Dependency{
		{Module: "path", Resolved: "path", DependencyTypes: []string{TypeCore}},
	}, b.Dependencies)

	assert.Equal(t, filepath.Join(src, "types.ts"), result.Modules[2].Source)
	assert.Empty(t, result.Modules[2].Dependencies)

	var leaves []string
	for _, m := range result.Modules[3:] {
		assert.Empty(t, m.Dependencies)
		leaves = append(leaves, m.Source)
	}
	assert.Equal(t, []string{lodash, "fs/promises", leftPad, vitest, "path"}, leaves)
}

func TestJSAnalyzerSingleFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": `const os = require("os")`})

	result, err := NewJSAnalyzer().Analyze(context.Background(), filepath.Join(root, "main.js"))
	require.NoError(t, err)
	require.Len(t, result.Modules, 2)
	assert.Equal(t, "os", result.Modules[0].Dependencies[0].Resolved)
}

func TestJSAnalyzerMissingRoot(t *testing.T) {
	_, err := NewJSAnalyzer().Analyze(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestJSAnalyzerCanceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": `require("os")`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewJSAnalyzer().Analyze(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
