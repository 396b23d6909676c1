package analyzer

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveExtensions are probed, in order, when a specifier omits the
// file extension.
var resolveExtensions = []string{
	".js", ".jsx", ".mjs", ".cjs",
	".ts", ".tsx", ".mts", ".cts", ".d.ts",
	".json",
}

// nodeResolver resolves import specifiers the way Node.js and bundlers do,
// limited to relative paths, built-ins and node_modules packages.
type nodeResolver struct {
	manifests manifestCache
}

func newNodeResolver() *nodeResolver {
	return &nodeResolver{manifests: make(manifestCache)}
}

// resolve turns a specifier found in importer into a classified Dependency.
func (r *nodeResolver) resolve(importer, specifier string) (Dependency, error) {
	dep := Dependency{Module: specifier, Resolved: specifier}

	if name, ok := coreModule(specifier); ok {
		dep.Resolved = name
		dep.DependencyTypes = []string{TypeCore}
		return dep, nil
	}

	dir := filepath.Dir(importer)
	if isPathSpecifier(specifier) {
		target := specifier
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, filepath.FromSlash(specifier))
		}
		if file, ok := resolveFile(target); ok {
			dep.Resolved = file
			dep.DependencyTypes = []string{TypeLocal}
		} else {
			dep.DependencyTypes = []string{TypeUnknown}
		}
		return dep, nil
	}

	name, subpath := splitPackageSpecifier(specifier)
	pkgDir, ok := findPackageDir(dir, name)
	if !ok {
		dep.DependencyTypes = []string{TypeUnknown}
		return dep, nil
	}
	dep.Resolved = resolvePackageEntry(pkgDir, subpath)

	m, err := r.manifests.projectManifest(dir)
	if err != nil {
		return dep, err
	}
	dep.DependencyTypes = []string{m.dependencyType(name)}
	return dep, nil
}

func isPathSpecifier(s string) bool {
	return s == "." || s == ".." ||
		strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") ||
		strings.HasPrefix(s, "/")
}

// splitPackageSpecifier separates the package name from the subpath,
// keeping the scope of scoped packages: "@a/b/c" gives "@a/b" and "c".
func splitPackageSpecifier(s string) (name, subpath string) {
	parts := strings.SplitN(s, "/", 3)
	if strings.HasPrefix(s, "@") && len(parts) > 1 {
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = parts[2]
		}
		return name, subpath
	}
	name, subpath, _ = strings.Cut(s, "/")
	return name, subpath
}

// findPackageDir walks up from dir looking for node_modules/<name>.
func findPackageDir(dir, name string) (string, bool) {
	for {
		if filepath.Base(dir) != "node_modules" {
			candidate := filepath.Join(dir, "node_modules", filepath.FromSlash(name))
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				return candidate, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// resolvePackageEntry returns the file a package import lands on, falling
// back to the package directory when no entry file exists.
func resolvePackageEntry(pkgDir, subpath string) string {
	if subpath != "" {
		if file, ok := resolveFile(filepath.Join(pkgDir, filepath.FromSlash(subpath))); ok {
			return file
		}
		return filepath.Join(pkgDir, filepath.FromSlash(subpath))
	}
	if m, err := readManifest(filepath.Join(pkgDir, "package.json")); err == nil && m.Main != "" {
		if file, ok := resolveFile(filepath.Join(pkgDir, filepath.FromSlash(m.Main))); ok {
			return file
		}
	}
	if file, ok := resolveIndex(pkgDir); ok {
		return file
	}
	return pkgDir
}

// resolveFile probes path as a file, then with each known extension,
// then as a directory holding an index file.
func resolveFile(path string) (string, bool) {
	if isFile(path) {
		return path, true
	}
	for _, ext := range resolveExtensions {
		if isFile(path + ext) {
			return path + ext, true
		}
	}
	return resolveIndex(path)
}

func resolveIndex(dir string) (string, bool) {
	for _, ext := range resolveExtensions {
		candidate := filepath.Join(dir, "index"+ext)
		if isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
