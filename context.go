package projmgr

import "fmt"

// ContextName is the canonical "project[.build][+target]" string form
// from spec.md §3.
type ContextName struct {
	Project string
	Build   string
	Target  string
}

func (c ContextName) String() string {
	s := c.Project
	if c.Build != "" {
		s += "." + c.Build
	}
	if c.Target != "" {
		s += "+" + c.Target
	}
	return s
}

// OutputKind enumerates the output-file mapping keys from spec.md §3.
type OutputKind string

const (
	OutputELF OutputKind = "elf"
	OutputBIN OutputKind = "bin"
	OutputHEX OutputKind = "hex"
	OutputLIB OutputKind = "lib"
	OutputMAP OutputKind = "map"
	OutputCMSE OutputKind = "cmse"
)

// Directories carries the per-context absolute paths that invariant 4
// (spec.md §3) requires to be pairwise non-conflicting.
type Directories struct {
	Cprj   string
	OutDir string
	IntDir string
	RTE    string
}

// Toolchain is the resolved compiler identity for a context (spec.md
// §4.5).
type Toolchain struct {
	Name       string
	Version    string // resolved exact semver of the chosen cmake config
	Root       string // from <NAME>_TOOLCHAIN_<M>_<N>_<P> or config lookup
	ConfigPath string // etc/<name>.<x.y.z>.cmake
}

// GeneratorInvocation records one generator run recorded on a context
// (spec.md §3 "generator invocations").
type GeneratorInvocation struct {
	ComponentID string
	GeneratorID string
	GpdscPath   string
	WorkingDir  string
}

// ConfigFileInstance is one RTE-managed configuration file tracked by
// the PLM (spec.md §3, §4.8).
type ConfigFileInstance struct {
	Deployed   string // path of F
	BaseVer    string
	UpdateVer  string
	Status     string // PLM status string, written verbatim to cbuild.yml
	Severity   Severity
}

// Context is the tuple (project, build-type, target-type) plus all
// resolved state (spec.md §3).
type Context struct {
	Name ContextName

	Toolchain  Toolchain
	Device     *Device
	Board      *Board
	Pname      string

	SelectedComponents []SelectedComponent
	SelectedAPIs       []API

	ConfigFiles []ConfigFileInstance
	FileGroups  map[string][]PackFile // group name -> files
	LinkerInputs []string

	Outputs map[OutputKind]string

	Generators []GeneratorInvocation

	Layers       []LayerCombination
	ActiveLayer  int // index into Layers once a `--active` selection is made, -1 if none

	DependsOn []ContextName

	Dirs Directories

	// PrecedencesDone guards recursive access-sequence resolution
	// (spec.md §4.9, §5): once true, re-entrant processing of this
	// context's own precedences is skipped rather than re-run.
	PrecedencesDone bool

	Variables map[string]string // user-defined `variables:` available to C9
}

func NewContext(name ContextName) *Context {
	return &Context{
		Name:      name,
		Outputs:   make(map[OutputKind]string),
		FileGroups: make(map[string][]PackFile),
		Variables: make(map[string]string),
		ActiveLayer: -1,
	}
}

// Buildable reports whether every selected component's dependency
// result clears the lattice bar (spec.md §3 invariant / buildability).
func (c *Context) Buildable() bool {
	for _, sc := range c.SelectedComponents {
		if !sc.Result.Result.Buildable() {
			return false
		}
	}
	return true
}

// AggregateIDs returns the set of aggregate ids currently selected, used
// to enforce invariant 1 (uniqueness per context).
func (c *Context) AggregateIDs() map[string]ComponentID {
	out := make(map[string]ComponentID, len(c.SelectedComponents))
	for _, sc := range c.SelectedComponents {
		out[sc.ID.AggregateID()] = sc.ID
	}
	return out
}

// AddComponent enforces invariant 1 before appending.
func (c *Context) AddComponent(sc SelectedComponent) error {
	agg := sc.ID.AggregateID()
	for _, existing := range c.SelectedComponents {
		if existing.ID.AggregateID() == agg {
			return fmt.Errorf("duplicate aggregate id %q in context %s (existing %s, new %s)",
				agg, c.Name, existing.ID.FullID(), sc.ID.FullID())
		}
	}
	c.SelectedComponents = append(c.SelectedComponents, sc)
	return nil
}
