package projmgr

// This file holds the plain-data AST produced by the YAML loader (C3,
// internal/yamlio) for every file kind consumed per spec.md §6. Field
// tagging keeps yaml and json tag names in sync.

// Position records where a node was parsed from, for diagnostics
// (spec.md §4.3: "Each loaded node records (file, line, column)").
type Position struct {
	File   string `yaml:"-" json:"-"`
	Line   int    `yaml:"-" json:"-"`
	Column int    `yaml:"-" json:"-"`
}

// PackRequirement is one `packs:` entry of a csolution/cproject file.
type PackRequirement struct {
	Pos Position `yaml:"-" json:"-"`

	Pack string `yaml:"pack" json:"pack" jsonschema:"required"`
	Path string `yaml:"path,omitempty" json:"path,omitempty" portable:"true"`
}

// BuildType and TargetType are named option bundles contributed to the
// precedence merge (spec.md §4.4).
type BuildType struct {
	Type    string        `yaml:"type" json:"type" jsonschema:"required"`
	Options BuildOptions  `yaml:",inline" json:",inline"`
}

type TargetType struct {
	Type     string       `yaml:"type" json:"type" jsonschema:"required"`
	Board    string       `yaml:"board,omitempty" json:"board,omitempty"`
	Device   string       `yaml:"device,omitempty" json:"device,omitempty"`
	Options  BuildOptions `yaml:",inline" json:",inline"`
}

// BuildOptions is the set of merge-participating build options from
// spec.md §4.4: scalars conflict on multiple non-empty values; vectors
// (defines/undefines, add-paths/del-paths, misc) set-union with "del"
// subtracting from the accumulated "add" set.
type BuildOptions struct {
	Compiler   string   `yaml:"compiler,omitempty" json:"compiler,omitempty"`
	Optimize   string   `yaml:"optimize,omitempty" json:"optimize,omitempty"`
	Debug      string   `yaml:"debug,omitempty" json:"debug,omitempty"`
	Warnings   string   `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	LanguageC  string   `yaml:"language-C,omitempty" json:"language-C,omitempty"`
	LanguageCpp string  `yaml:"language-CPP,omitempty" json:"language-CPP,omitempty"`

	Defines   []string `yaml:"define,omitempty" json:"define,omitempty"`
	Undefines []string `yaml:"undefine,omitempty" json:"undefine,omitempty"`
	AddPaths  []string `yaml:"add-path,omitempty" json:"add-path,omitempty" portable:"true"`
	DelPaths  []string `yaml:"del-path,omitempty" json:"del-path,omitempty" portable:"true"`
	Misc      []string `yaml:"misc,omitempty" json:"misc,omitempty"`
}

// TypeFilter is the global include/exclude context filter from spec.md
// §4.4 ("inclusion is OR, exclusion wins").
type TypeFilter struct {
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// ProjectRef is one `projects:` entry of a csolution file.
type ProjectRef struct {
	Project       string   `yaml:"project" json:"project" jsonschema:"required" portable:"true"`
	ForContext    []string `yaml:"for-context,omitempty" json:"for-context,omitempty"`
	NotForContext []string `yaml:"not-for-context,omitempty" json:"not-for-context,omitempty"`
}

// Csolution is the top-level *.csolution.yml AST (spec.md §6).
type Csolution struct {
	Pos Position `yaml:"-" json:"-"`

	Created     string            `yaml:"created,omitempty" json:"created,omitempty"`
	CdefaultRef string            `yaml:"cdefault,omitempty" json:"cdefault,omitempty" portable:"true"`
	Packs       []PackRequirement `yaml:"packs,omitempty" json:"packs,omitempty"`
	BuildTypes  []BuildType       `yaml:"build-types,omitempty" json:"build-types,omitempty"`
	TargetTypes []TargetType      `yaml:"target-types,omitempty" json:"target-types,omitempty"`
	Projects    []ProjectRef      `yaml:"projects,omitempty" json:"projects,omitempty"`
	TypeFilter  TypeFilter        `yaml:"type-filter,omitempty" json:"type-filter,omitempty"`
	Variables   map[string]string `yaml:"variables,omitempty" json:"variables,omitempty"`

	SourcePath string `yaml:"-" json:"-"` // absolute path to the .csolution.yml, seeds SolutionDir()
}

// SetupEntry is one `setups:` entry of a cproject file: an alternative
// named precedence level, per the chain in spec.md §4.4.
type SetupEntry struct {
	Setup   string       `yaml:"setup" json:"setup" jsonschema:"required"`
	Options BuildOptions `yaml:",inline" json:",inline"`
	ForContext    []string `yaml:"for-context,omitempty" json:"for-context,omitempty"`
	NotForContext []string `yaml:"not-for-context,omitempty" json:"not-for-context,omitempty"`
}

// ComponentEntry is one `components:` entry of a cproject/clayer file.
type ComponentEntry struct {
	Pos Position `yaml:"-" json:"-"`

	Component string `yaml:"component" json:"component" jsonschema:"required"`
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty"`
	Build     string `yaml:"build,omitempty" json:"build,omitempty"`
	Instances int    `yaml:"instances,omitempty" json:"instances,omitempty"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
}

// ConnectEntry is one provides/consumes pair in a YAML connections
// block, e.g. "CMSIS_DEVICE_HCLK: 4" or "CMSIS_DEVICE_HCLK: +3".
type ConnectEntry struct {
	Key   string `yaml:"key" json:"key"`
	Value string `yaml:"value" json:"value"`
}

// ConnectBlock is one `connections:` entry.
type ConnectBlock struct {
	Connect  string         `yaml:"connect,omitempty" json:"connect,omitempty"`
	Set      string         `yaml:"set,omitempty" json:"set,omitempty"`
	Provides []ConnectEntry `yaml:"provides,omitempty" json:"provides,omitempty"`
	Consumes []ConnectEntry `yaml:"consumes,omitempty" json:"consumes,omitempty"`
}

// Cproject is a *.cproject.yml AST.
type Cproject struct {
	Pos Position `yaml:"-" json:"-"`

	Packs       []PackRequirement `yaml:"packs,omitempty" json:"packs,omitempty"`
	Setups      []SetupEntry      `yaml:"setups,omitempty" json:"setups,omitempty"`
	Components  []ComponentEntry  `yaml:"components,omitempty" json:"components,omitempty"`
	Layers      []LayerRef        `yaml:"layers,omitempty" json:"layers,omitempty"`
	Connections []ConnectBlock    `yaml:"connections,omitempty" json:"connections,omitempty"`
	Options     BuildOptions      `yaml:",inline" json:",inline"`

	SourcePath string `yaml:"-" json:"-"`
}

// LayerRef is one `layers:` entry referencing a clayer by path, plus an
// optional `type:` override and for-context filter.
type LayerRef struct {
	Layer         string   `yaml:"layer" json:"layer" jsonschema:"required" portable:"true"`
	Type          string   `yaml:"type,omitempty" json:"type,omitempty"`
	Optional      bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
	ForContext    []string `yaml:"for-context,omitempty" json:"for-context,omitempty"`
	NotForContext []string `yaml:"not-for-context,omitempty" json:"not-for-context,omitempty"`
}

// Cclayer is a *.clayer.yml AST.
type Cclayer struct {
	Pos Position `yaml:"-" json:"-"`

	Type        string           `yaml:"type,omitempty" json:"type,omitempty"`
	ForBoard    string           `yaml:"for-board,omitempty" json:"for-board,omitempty"`
	ForDevice   string           `yaml:"for-device,omitempty" json:"for-device,omitempty"`
	Packs       []PackRequirement `yaml:"packs,omitempty" json:"packs,omitempty"`
	Components  []ComponentEntry  `yaml:"components,omitempty" json:"components,omitempty"`
	Connections []ConnectBlock    `yaml:"connections,omitempty" json:"connections,omitempty"`

	SourcePath string `yaml:"-" json:"-"`
}

// Cdefault is the *.cdefault.yml AST: user/site-wide default build
// options applied below setups/clayers but above nothing (lowest
// precedence, spec.md §4.4).
type Cdefault struct {
	Pos Position `yaml:"-" json:"-"`

	Compiler string       `yaml:"compiler,omitempty" json:"compiler,omitempty"`
	Options  BuildOptions `yaml:",inline" json:",inline"`
}

// CbuildSetEntry records one persisted --context/--toolchain selection.
type CbuildSetEntry struct {
	Context   string `yaml:"context" json:"context" jsonschema:"required"`
	Compiler  string `yaml:"compiler,omitempty" json:"compiler,omitempty"`
}

// CbuildSet is the *.cbuild-set.yml AST (spec.md §6).
type CbuildSet struct {
	Contexts []CbuildSetEntry `yaml:"contexts,omitempty" json:"contexts,omitempty"`
	Active   string           `yaml:"active,omitempty" json:"active,omitempty"` // "target@set"
}

// ResolvedPackEntry is one entry of the *.cbuild-pack.yml lockfile.
type ResolvedPackEntry struct {
	Resolved     string   `yaml:"resolved-pack" json:"resolved-pack"`
	SelectedBy   []string `yaml:"selected-by-pack,omitempty" json:"selected-by-pack,omitempty"`
}

// CbuildPack is the *.cbuild-pack.yml AST.
type CbuildPack struct {
	Packs []ResolvedPackEntry `yaml:"packs,omitempty" json:"packs,omitempty"`
}

// DebugAdapter is one entry of *.debug-adapters.yml (spec.md §6),
// consumed when resolving a context's debug/run configuration.
type DebugAdapter struct {
	Name      string `yaml:"name" json:"name" jsonschema:"required"`
	Protocol  string `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Command   string `yaml:"command,omitempty" json:"command,omitempty"`
}

type DebugAdapters struct {
	Adapters []DebugAdapter `yaml:"adapters,omitempty" json:"adapters,omitempty"`
}
