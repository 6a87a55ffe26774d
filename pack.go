package projmgr

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
)

// PackID identifies a versioned pack, the id string form being
// "vendor::name@version" per spec.md §3.
type PackID struct {
	Vendor  string
	Name    string
	Version string
}

func (id PackID) String() string {
	if id.Version == "" {
		return fmt.Sprintf("%s::%s", id.Vendor, id.Name)
	}
	return fmt.Sprintf("%s::%s@%s", id.Vendor, id.Name, id.Version)
}

// ParsePackID parses "vendor::name@version" or "vendor::name".
func ParsePackID(s string) (PackID, error) {
	vendName, version, _ := strings.Cut(s, "@")
	vendor, name, ok := strings.Cut(vendName, "::")
	if !ok {
		return PackID{}, fmt.Errorf("invalid pack id %q: missing vendor::name separator", s)
	}
	return PackID{Vendor: vendor, Name: name, Version: version}, nil
}

func (id PackID) SemVer() (*semver.Version, error) {
	if id.Version == "" {
		return nil, fmt.Errorf("pack id %s has no version", id)
	}
	return semver.NewVersion(id.Version)
}

// PackFile is a file reference owned by a pack (source, header, linker
// script, doc, etc.) relative to the pack root.
type PackFile struct {
	Path     string
	Category string // "source", "header", "doc", "linkerScript", ...
	Attr     string // "config" marks a user-editable configuration file
}

// Generator describes an external, opaque code-generator executable
// associated with one or more components (spec.md §4.6, §6).
type Generator struct {
	ID      string
	Exe     string
	Args    []string
	WorkDir string
	Gpdsc   string // path template; "<workingDir>/<id>.gpdsc" once expanded
}

// Example and Taxonomy are carried for completeness of the pack model
// (spec.md §3 "Owns descriptors for ... examples, taxonomy, ...").
type Example struct {
	Name   string
	Doc    string
	Board  string
	Folder string
}

type TaxonomyEntry struct {
	ID          string
	Description string
	Generator   string
}

// Pack is a versioned bundle of devices/boards/components/apis/
// conditions/generators/files loaded from one pdsc (spec.md §3).
type Pack struct {
	ID   PackID
	Path string // directory containing the pdsc, used by $Pack(...)$ (C9)

	Devices    []Device
	Boards     []Board
	Components []Component
	APIs       []API
	Conditions map[string]Condition
	Generators []Generator
	Examples   []Example
	Taxonomy   []TaxonomyEntry
	Files      []PackFile
	Layers     []Layer

	License string
	// ProjectLocal is true for packs referenced by `path:` rather than
	// discovered under CMSIS_PACK_ROOT; such packs are never emitted
	// into cbuild-pack.yml (invariant 3, spec.md §3).
	ProjectLocal bool
}

func (p *Pack) String() string { return p.ID.String() }

// PackFilter restricts component/device/board lookups to an allowed set
// of pack ids (spec.md §4.2).
type PackFilter struct {
	Allowed map[PackID]bool
}

// NewPackFilter builds a filter from an explicit allow-list. A nil/empty
// filter allows everything.
func NewPackFilter(ids ...PackID) *PackFilter {
	if len(ids) == 0 {
		return nil
	}
	f := &PackFilter{Allowed: make(map[PackID]bool, len(ids))}
	for _, id := range ids {
		f.Allowed[id] = true
	}
	return f
}

func (f *PackFilter) Allows(id PackID) bool {
	if f == nil || len(f.Allowed) == 0 {
		return true
	}
	return f.Allowed[id]
}
