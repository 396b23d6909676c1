package analyzer

import "strings"

// nodeBuiltins lists the modules shipped with the Node.js runtime.
var nodeBuiltins = map[string]bool{
	"assert":              true,
	"async_hooks":         true,
	"buffer":              true,
	"child_process":       true,
	"cluster":             true,
	"console":             true,
	"constants":           true,
	"crypto":              true,
	"dgram":               true,
	"diagnostics_channel": true,
	"dns":                 true,
	"domain":              true,
	"events":              true,
	"fs":                  true,
	"http":                true,
	"http2":               true,
	"https":               true,
	"inspector":           true,
	"module":              true,
	"net":                 true,
	"os":                  true,
	"path":                true,
	"perf_hooks":          true,
	"process":             true,
	"punycode":            true,
	"querystring":         true,
	"readline":            true,
	"repl":                true,
	"stream":              true,
	"string_decoder":      true,
	"sys":                 true,
	"timers":              true,
	"tls":                 true,
	"trace_events":        true,
	"tty":                 true,
	"url":                 true,
	"util":                true,
	"v8":                  true,
	"vm":                  true,
	"wasi":                true,
	"worker_threads":      true,
	"zlib":                true,
}

// coreModule reports whether specifier names a runtime built-in and returns
// its bare name. Subpaths such as "fs/promises" count as the built-in.
func coreModule(specifier string) (string, bool) {
	name, prefixed := strings.CutPrefix(specifier, "node:")
	if prefixed {
		return name, true
	}
	top, _, _ := strings.Cut(name, "/")
	return name, nodeBuiltins[top]
}
