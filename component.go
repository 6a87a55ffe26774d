package projmgr

import (
	"strings"

	"github.com/Masterminds/semver"
)

// ComponentID is the {Cvendor, Cbundle, Cclass, Cgroup, Csub, Cvariant,
// Cversion} tuple from spec.md §3. The "partial id" used for matching
// excludes Cvendor and Cversion; AggregateID additionally excludes
// Cvariant and Cversion, and is the key that must be unique per context
// (invariant 1).
type ComponentID struct {
	Cvendor  string
	Cbundle  string
	Cclass   string
	Cgroup   string
	Csub     string
	Cvariant string
	Cversion string
}

// AggregateID drops vendor/variant/version: two variants of the same
// class/group/sub/bundle compete for the same aggregate slot.
func (id ComponentID) AggregateID() string {
	return strings.Join([]string{id.Cbundle, id.Cclass, id.Cgroup, id.Csub}, ":")
}

// PartialID drops vendor and version (spec.md §4.6 step 2): used to
// test a user's request string against a candidate's token set.
func (id ComponentID) PartialID() string {
	return strings.Join(nonEmpty(id.Cbundle, id.Cclass, id.Cgroup, id.Csub, id.Cvariant), ":")
}

// FullID carries every field, used once a component is selected.
func (id ComponentID) FullID() string {
	s := id.PartialID()
	if id.Cvendor != "" {
		s = id.Cvendor + "::" + s
	}
	if id.Cversion != "" {
		s = s + "@" + id.Cversion
	}
	return s
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (id ComponentID) SemVer() (*semver.Version, error) {
	if id.Cversion == "" {
		return semver.NewVersion("0.0.0")
	}
	return semver.NewVersion(id.Cversion)
}

// Component is a unit of reusable software offered by a pack (spec.md
// §3). API has the identical shape and acts as a polymorphic contract
// implemented by zero or one selected component per context.
type Component struct {
	ID            ComponentID
	ConditionID   string
	MaxInstances  int
	IsDefault     bool
	Generator     string // Generator.ID, or empty
	Files         []PackFile
	Pack          PackID
	Description   string
}

// API mirrors Component's shape (spec.md §3: "same shape as a
// component but acts as a polymorphic contract").
type API struct {
	ID            ComponentID
	ConditionID   string
	Pack          PackID
	Description   string
}

// ComponentRequest is one entry of a context's component requirements
// (spec.md §4.6): a full or partial id, or free text, plus optional
// condition/build/instances/type hints.
type ComponentRequest struct {
	Component string
	Condition string
	Build     string
	Instances int
	Type      string
}

// SelectedComponent is a context-owned clone of a resolved Component
// (spec.md §3 Ownership: "Contexts own their selected-component
// instances (clones)").
type SelectedComponent struct {
	Component
	SelectedBy string // the request string that produced this selection, for selected-by trail
	Result     DependencyResult
}
