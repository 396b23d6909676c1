package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// manifest is the subset of package.json the resolver reads.
type manifest struct {
	Name                 string            `json:"name"`
	Main                 string            `json:"main"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`

	// Either a list of names or a boolean, depending on the package.
	BundledDependencies json.RawMessage `json:"bundledDependencies"`
	BundleDependencies  json.RawMessage `json:"bundleDependencies"`
}

func readManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// bundled reports whether name is listed as a bundled dependency.
func (m *manifest) bundled(name string) bool {
	for _, raw := range []json.RawMessage{m.BundledDependencies, m.BundleDependencies} {
		var names []string
		if len(raw) == 0 || json.Unmarshal(raw, &names) != nil {
			continue
		}
		for _, n := range names {
			if n == name {
				return true
			}
		}
	}
	return false
}

// dependencyType classifies a package by the manifest section that lists it.
func (m *manifest) dependencyType(name string) string {
	switch {
	case m == nil:
		return TypeNPMUnknown
	case has(m.Dependencies, name):
		return TypeNPM
	case has(m.DevDependencies, name):
		return TypeNPMDev
	case has(m.OptionalDependencies, name):
		return TypeNPMOptional
	case has(m.PeerDependencies, name):
		return TypeNPMPeer
	case m.bundled(name):
		return TypeNPMBundled
	default:
		return TypeNPMNoPkg
	}
}

func has(deps map[string]string, name string) bool {
	_, ok := deps[name]
	return ok
}

// manifestCache memoizes the project manifest that governs each directory.
type manifestCache map[string]*manifest

// projectManifest returns the nearest package.json above dir that is not
// part of an installed package, or nil when there is none.
func (c manifestCache) projectManifest(dir string) (*manifest, error) {
	if m, ok := c[dir]; ok {
		return m, nil
	}
	var m *manifest
	if !isInstalledPackageDir(dir) {
		found, err := readManifest(filepath.Join(dir, "package.json"))
		switch {
		case err == nil:
			m = found
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}
	if m == nil {
		parent := filepath.Dir(dir)
		if parent != dir {
			var err error
			if m, err = c.projectManifest(parent); err != nil {
				return nil, err
			}
		}
	}
	c[dir] = m
	return m, nil
}

func isInstalledPackageDir(dir string) bool {
	for _, elem := range strings.Split(filepath.ToSlash(dir), "/") {
		if elem == "node_modules" {
			return true
		}
	}
	return false
}
