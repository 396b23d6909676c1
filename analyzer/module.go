package analyzer

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/packages"
)

// LoadPackages loads every package below pkgDir together with the
// packages they import.
func LoadPackages(ctx context.Context, pkgDir string) ([]*packages.Package, error) {
	config := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedImports | packages.NeedDeps | packages.NeedModule,
		Dir:     pkgDir,
	}

	pkgs, err := packages.Load(config, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load package: %w", err)
	}

	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for dir: %s", pkgDir)
	}

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("errors loading package %s: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })
	return pkgs, nil
}

// GoModule classifies imports against a go.mod file.
type GoModule struct {
	ModDir       string //absolute go module path
	ModPath      string
	replacements map[string]ModuleLocalReplacement

	// module path -> required only indirectly
	indirect map[string]bool
}

// NewModule creates a new GoModule
func NewModule(modDir string) (*GoModule, error) {
	modFilePath := filepath.Join(modDir, "go.mod")

	modFileContent, err := os.ReadFile(modFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	modFile, err := modfile.Parse(modFilePath, modFileContent, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	replacements := make(map[string]ModuleLocalReplacement)
	for _, replace := range modFile.Replace {
		if !modfile.IsDirectoryPath(replace.New.Path) {
			continue
		}
		newPath := replace.New.Path
		if !filepath.IsAbs(newPath) {
			newPath = filepath.Join(modDir, newPath)
		}
		replacements[replace.Old.Path] = ModuleLocalReplacement{
			OldPath: replace.Old.Path,
			NewPath: newPath,
		}
	}

	indirect := make(map[string]bool)
	for _, req := range modFile.Require {
		indirect[req.Mod.Path] = req.Indirect
	}

	return &GoModule{
		ModDir:       modDir,
		ModPath:      modFile.Module.Mod.Path,
		replacements: replacements,
		indirect:     indirect,
	}, nil
}

// dependencyType labels an imported package.
func (m *GoModule) dependencyType(imp *packages.Package) string {
	switch {
	case imp == nil:
		return TypeUnknown
	//not module(std library)
	case imp.Module == nil:
		return TypeCore
	case imp.Module.Main || imp.Module.Path == m.ModPath:
		return TypeLocal
	}
	if _, ok := m.replacements[imp.Module.Path]; ok {
		return TypeLocalModule
	}
	if indirect, required := m.indirect[imp.Module.Path]; required && !indirect {
		return TypeNPM
	}
	return TypeNPMIndirect
}

// resolvedPath is the directory an import lands on. Packages of locally
// replaced modules are placed under the replacement directory named in
// go.mod; built-ins and unresolved imports keep their import path.
func (m *GoModule) resolvedPath(importPath string, imp *packages.Package, typ string) string {
	switch typ {
	case TypeCore, TypeUnknown:
		return importPath
	case TypeLocalModule:
		rep := m.replacements[imp.Module.Path]
		rel := strings.TrimPrefix(strings.TrimPrefix(imp.PkgPath, rep.OldPath), "/")
		return filepath.Join(rep.NewPath, filepath.FromSlash(rel))
	}
	if imp.Dir != "" {
		return imp.Dir
	}
	return importPath
}

// ProcessPackage turns every Go file of pkg into a Module.
func (m *GoModule) ProcessPackage(pkg *packages.Package, fset *token.FileSet) ([]Module, error) {
	modules := make([]Module, 0, len(pkg.GoFiles))
	for _, file := range pkg.GoFiles {
		f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}

		module := Module{Source: file, Dependencies: make([]Dependency, 0, len(f.Imports))}
		for _, spec := range f.Imports {
			importPath, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				return nil, fmt.Errorf("bad import %s in %s: %w", spec.Path.Value, file, err)
			}
			imp := pkg.Imports[importPath]
			typ := m.dependencyType(imp)

			module.Dependencies = append(module.Dependencies, Dependency{
				Module:          importPath,
				Resolved:        m.resolvedPath(importPath, imp, typ),
				DependencyTypes: []string{typ},
			})
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// GoAnalyzer builds the import graph of the Go packages below a directory.
type GoAnalyzer struct{}

func NewGoAnalyzer() *GoAnalyzer {
	return &GoAnalyzer{}
}

func (a *GoAnalyzer) Analyze(ctx context.Context, root string) (*Result, error) {
	pkgDir, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	modDir, err := findGoModDir(pkgDir)
	if err != nil {
		return nil, err
	}
	slog.Debug("load go packages", "dir", pkgDir, "module", modDir)

	m, err := NewModule(modDir)
	if err != nil {
		return nil, err
	}
	pkgs, err := LoadPackages(ctx, pkgDir)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	result := &Result{}
	for _, pkg := range pkgs {
		modules, err := m.ProcessPackage(pkg, fset)
		if err != nil {
			return nil, err
		}
		result.Modules = append(result.Modules, modules...)
	}
	return result, nil
}

func findGoModDir(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
