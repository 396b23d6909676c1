package analyzer

// Dependency type labels. Only the first label of a dependency is consulted
// downstream, so analyzers put the most specific one first.
const (
	TypeCore        = "core"
	TypeLocal       = "local"
	TypeLocalModule = "localmodule"
	TypeNPM         = "npm"
	TypeNPMDev      = "npm-dev"
	TypeNPMOptional = "npm-optional"
	TypeNPMPeer     = "npm-peer"
	TypeNPMBundled  = "npm-bundled"
	TypeNPMNoPkg    = "npm-no-pkg"
	TypeNPMUnknown  = "npm-unknown"
	TypeNPMIndirect = "npm-indirect"
	TypeUnknown     = "unknown"
)

// Result is the dependency graph of one analyzed tree.
type Result struct {
	Modules []Module `json:"modules"`
}

// Module represents a source file with its path and dependencies
type Module struct {
	Source       string       `json:"source"`
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is one import edge leaving a module.
type Dependency struct {
	// Module is the specifier as written in the importing file.
	Module          string   `json:"module"`
	Resolved        string   `json:"resolved"`
	DependencyTypes []string `json:"dependencyTypes"`
}

// ModuleLocalReplacement is a go.mod replace directive pointing at a
// directory.
type ModuleLocalReplacement struct {
	OldPath string
	NewPath string
}
