// Package rte implements C2: the in-memory model built from loaded
// packs, and the condition evaluator/dependency solver that operates
// over it (spec.md §4.2).
package rte

import (
	"strings"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Model is the global, read-only-after-init view over every loaded pack
// (spec.md §3 Ownership: "the model (C2) holds pointers into pack data
// and outlives individual contexts").
type Model struct {
	packs []*projmgr.Pack

	devices    []projmgr.Device
	boards     []projmgr.Board
	components []modelComponent
	apis       []projmgr.API
	conditions map[string]projmgr.Condition
}

type modelComponent struct {
	projmgr.Component
}

// NewModel builds a Model from the set of loaded packs. Packs are owned
// by the registry (C1); Model only holds references into their slices.
func NewModel(packs []*projmgr.Pack) *Model {
	m := &Model{packs: packs, conditions: make(map[string]projmgr.Condition)}
	for _, p := range packs {
		m.devices = append(m.devices, p.Devices...)
		m.boards = append(m.boards, p.Boards...)
		for _, c := range p.Components {
			m.components = append(m.components, modelComponent{c})
		}
		m.apis = append(m.apis, p.APIs...)
		for id, cond := range p.Conditions {
			m.conditions[id] = cond
		}
	}
	return m
}

// Devices returns devices matching the given optional filters; empty
// strings are wildcards (spec.md §4.2).
func (m *Model) Devices(name, vendor, variant string) []projmgr.Device {
	var out []projmgr.Device
	for _, d := range m.devices {
		if name != "" && d.Name != name {
			continue
		}
		if vendor != "" && d.Vendor != vendor {
			continue
		}
		if variant != "" && d.Variant != variant {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Boards returns every known board.
func (m *Model) Boards() []projmgr.Board {
	return append([]projmgr.Board(nil), m.boards...)
}

// Layers returns every clayer fragment offered by a loaded pack (spec.md
// §4.7 step 1: "candidate layers from ... filtered RTE model (packs)").
func (m *Model) Layers() []projmgr.Layer {
	var out []projmgr.Layer
	for _, p := range m.packs {
		out = append(out, p.Layers...)
	}
	return out
}

// FilteredComponents returns every installed component honoring the
// given PackFilter and target attribute set (spec.md §4.2).
func (m *Model) FilteredComponents(target projmgr.TargetFilter, filter *projmgr.PackFilter) map[string]projmgr.Component {
	out := make(map[string]projmgr.Component)
	for _, c := range m.components {
		if !filter.Allows(c.Pack) {
			continue
		}
		if !attributesCompatible(c.Component, target) {
			continue
		}
		out[c.ID.FullID()] = c.Component
	}
	return out
}

// attributesCompatible accepts every component: attribute conflicts
// (e.g. a no-fpu device vs an fpu-requiring component's condition) are
// left to the condition evaluator, and pack-level filtering is done by
// the PackFilter in FilteredComponents (spec.md §4.2).
func attributesCompatible(_ projmgr.Component, _ projmgr.TargetFilter) bool {
	return true
}

// Condition looks up a named condition by id.
func (m *Model) Condition(id string) (projmgr.Condition, bool) {
	c, ok := m.conditions[id]
	return c, ok
}

// Component looks up one component by its full id.
func (m *Model) Component(fullID string) (projmgr.Component, bool) {
	for _, c := range m.components {
		if c.ID.FullID() == fullID {
			return c.Component, true
		}
	}
	return projmgr.Component{}, false
}

// APIFor returns the API matching the partial id, if any, so the
// dependency solver can check "implemented by zero or one selected
// component per context" (spec.md §3).
func (m *Model) APIFor(partialID string) (projmgr.API, bool) {
	for _, a := range m.apis {
		if a.ID.PartialID() == partialID {
			return a, true
		}
	}
	return projmgr.API{}, false
}

// componentsByAggregate groups selected components by aggregate id, the
// granularity invariant 1 (spec.md §3) polices.
func componentsByAggregate(selected []projmgr.SelectedComponent) map[string][]projmgr.SelectedComponent {
	out := make(map[string][]projmgr.SelectedComponent)
	for _, sc := range selected {
		agg := sc.ID.AggregateID()
		out[agg] = append(out[agg], sc)
	}
	return out
}

// attrMatches is a small helper used by the condition evaluator to test
// one leaf predicate against a TargetFilter.
func attrMatches(p projmgr.Predicate, target projmgr.TargetFilter) bool {
	switch strings.ToLower(p.Attribute) {
	case "dcore":
		return target.Device != nil && deviceCore(*target.Device, target.Pname) == p.Value
	case "dfpu":
		return target.Device != nil && deviceAttr(*target.Device, target.Pname, "fpu") == p.Value
	case "ddsp":
		return target.Device != nil && deviceAttr(*target.Device, target.Pname, "dsp") == p.Value
	case "dendian":
		return target.Device != nil && deviceAttr(*target.Device, target.Pname, "endian") == p.Value
	case "tcompiler":
		return target.Compiler == p.Value
	default:
		v, ok := target.Attributes[p.Attribute]
		return ok && v == p.Value
	}
}

func deviceCore(d projmgr.Device, pname string) string {
	return deviceAttr(d, pname, "core")
}

func deviceAttr(d projmgr.Device, pname, attr string) string {
	for _, p := range d.Processors {
		if pname != "" && p.Pname != pname {
			continue
		}
		switch attr {
		case "core":
			return p.Attrs.Core
		case "fpu":
			return p.Attrs.FPU
		case "dsp":
			return p.Attrs.DSP
		case "endian":
			return p.Attrs.Endian
		}
	}
	return ""
}
