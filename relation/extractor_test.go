package relation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libedges/analyzer"
)

type stubAnalyzer struct {
	result *analyzer.Result
	err    error
	root   string
}

func (s *stubAnalyzer) Analyze(_ context.Context, root string) (*analyzer.Result, error) {
	s.root = root
	return s.result, s.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func newTestExtractor(a analyzer.Analyzer, out *bytes.Buffer, logs *bytes.Buffer) *Extractor {
	return &Extractor{
		Analyzer: a,
		Scope:    SubstringScope{Source: "/proj/src"},
		Base:     "/proj",
		Out:      out,
		Logger:   slog.New(slog.NewJSONHandler(logs, nil)),
	}
}

func logLines(logs *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(logs.String()), "\n")
}

func TestExtractorRun(t *testing.T) {
	stub := &stubAnalyzer{result: &analyzer.Result{Modules: []analyzer.Module{{
		Source: "/proj/src/a.ts",
		Dependencies: []analyzer.Dependency{
			{Resolved: "/proj/node_modules/lodash/index.js", DependencyTypes: []string{"npm"}},
			{Resolved: "fs", DependencyTypes: []string{"core"}},
		},
	}}}}
	var out, logs bytes.Buffer

	n := newTestExtractor(stub, &out, &logs).Run(context.Background(), "/proj/src")

	assert.Equal(t, 2, n)
	assert.Equal(t, "/proj/src", stub.root)
	assert.Equal(t,
		`{"source":"/proj/src/a.ts","target":"lodash/index.js","location":"/proj/src/a.ts"}`+"\n"+
			`{"source":"/proj/src/a.ts","target":"fs","location":"/proj/src/a.ts"}`+"\n",
		out.String())
	assert.Empty(t, logs.String())
}

func TestExtractorRunAnalyzerFailure(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("boom")}
	var out, logs bytes.Buffer

	n := newTestExtractor(stub, &out, &logs).Run(context.Background(), "/proj/src")

	assert.Zero(t, n)
	assert.Empty(t, out.String())
	lines := logLines(&logs)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"ERROR"`)
	assert.Contains(t, lines[0], "boom")
}

func TestExtractorRunWriteFailure(t *testing.T) {
	stub := &stubAnalyzer{result: &analyzer.Result{Modules: []analyzer.Module{{
		Source:       "/proj/src/a.ts",
		Dependencies: []analyzer.Dependency{{Resolved: "fs", DependencyTypes: []string{"core"}}},
	}}}}
	var logs bytes.Buffer
	ex := &Extractor{
		Analyzer: stub,
		Scope:    SubstringScope{Source: "/proj/src"},
		Out:      failingWriter{},
		Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
	}

	assert.Zero(t, ex.Run(context.Background(), "/proj/src"))
	assert.Len(t, logLines(&logs), 1)
}

func TestExtractNoRelations(t *testing.T) {
	stub := &stubAnalyzer{result: &analyzer.Result{}}
	var out, logs bytes.Buffer

	n, err := newTestExtractor(stub, &out, &logs).Extract(context.Background(), "/proj/src")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, out.String())
}

func TestJSONLWriterDoesNotEscapeHTML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewJSONLWriter(&out).Write(Relation{Source: "a<b>&", Target: "t", Location: "a<b>&"}))
	assert.Equal(t, `{"source":"a<b>&","target":"t","location":"a<b>&"}`+"\n", out.String())
}
