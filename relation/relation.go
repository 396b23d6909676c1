package relation

import (
	"path/filepath"
	"strings"

	"libedges/analyzer"
)

// Relation is one module -> external library edge.
type Relation struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Kind     string `json:"kind,omitempty"`
	Location string `json:"location"`
}

var nodeModulesSegment = string(filepath.Separator) + "node_modules" + string(filepath.Separator)

// IsExternalLib reports whether dep points at a runtime built-in or a
// registry package. Only the first label counts.
func IsExternalLib(dep analyzer.Dependency) bool {
	if len(dep.DependencyTypes) == 0 {
		return false
	}
	first := dep.DependencyTypes[0]
	return first == analyzer.TypeCore || strings.Contains(first, "npm")
}

func IsCore(dep analyzer.Dependency) bool {
	return len(dep.DependencyTypes) > 0 && dep.DependencyTypes[0] == analyzer.TypeCore
}

// ResolveModule makes modulePath absolute and strips base from its front.
// Paths outside base come back absolute. With removeNodeModules the first
// node_modules segment is dropped as well.
func ResolveModule(modulePath, base string, removeNodeModules bool) (string, error) {
	abs, err := filepath.Abs(modulePath)
	if err != nil {
		return "", err
	}
	result := analyzer.TrimFilePathPrefix(abs, base)
	if removeNodeModules {
		result = stripNodeModules(result)
	}
	return result, nil
}

// stripNodeModules removes the first node_modules segment. A leading one
// takes both separators with it ("/node_modules/a/b" -> "a/b"), an inner
// one keeps a single separator ("/x/node_modules/a" -> "/x/a").
func stripNodeModules(p string) string {
	if rest, ok := strings.CutPrefix(p, nodeModulesSegment); ok {
		return rest
	}
	i := strings.Index(p, nodeModulesSegment)
	if i < 0 {
		return p
	}
	return p[:i+1] + p[i+len(nodeModulesSegment):]
}

// sourcePath is the edge's source endpoint: only paths written relative
// to the working directory are rebased.
func sourcePath(module analyzer.Module, base string) (string, error) {
	if !strings.Contains(module.Source, "./") {
		return module.Source, nil
	}
	return ResolveModule(module.Source, base, false)
}

// targetPath is the edge's target endpoint. Built-ins are not files and
// stay as resolved.
func targetPath(dep analyzer.Dependency, base string) (string, error) {
	if IsCore(dep) {
		return dep.Resolved, nil
	}
	return ResolveModule(dep.Resolved, base, true)
}

// Build returns the relations of the in-scope modules, in module order and
// dependency order within each module.
func Build(result *analyzer.Result, scope Scope, base string) ([]Relation, error) {
	var relations []Relation
	for _, module := range result.Modules {
		external := externalDeps(module)
		if len(external) == 0 {
			continue
		}
		in, err := scope.Contains(module.Source)
		if err != nil {
			return nil, err
		}
		if !in {
			continue
		}

		source, err := sourcePath(module, base)
		if err != nil {
			return nil, err
		}
		for _, dep := range external {
			target, err := targetPath(dep, base)
			if err != nil {
				return nil, err
			}
			relations = append(relations, Relation{Source: source, Target: target, Location: source})
		}
	}
	return relations, nil
}

func externalDeps(module analyzer.Module) []analyzer.Dependency {
	var deps []analyzer.Dependency
	for _, dep := range module.Dependencies {
		if IsExternalLib(dep) {
			deps = append(deps, dep)
		}
	}
	return deps
}
