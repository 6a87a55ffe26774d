// Package layers implements C7: the layer/connection solver — collecting
// candidate clayers, classifying their connections into columns, cross-
// producting combinations, computing each combination's active set by
// fixpoint propagation, and validating it (spec.md §4.7). Grounded on
// the pack's `crossplane` `Packages.UnsatisfiedConstraints`
// accumulate-then-validate shape, generalized here from a version
// lattice to a provides/consumes/set lattice.
package layers

import (
	"path/filepath"
	"strings"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Model is the subset of rte.Model the layer solver needs to collect
// pack-provided candidate layers.
type Model interface {
	Layers() []projmgr.Layer
}

// Collect gathers candidate layers from the filtered RTE model and an
// optional recursive filesystem search under extraPath (spec.md §4.7
// step 1). readClayers is injected so the solver stays testable without
// real filesystem access; nil skips the filesystem search.
func Collect(m Model, extraPath string, readClayers func(root string) ([]projmgr.Layer, error)) ([]projmgr.Layer, error) {
	out := append([]projmgr.Layer{}, m.Layers()...)
	if extraPath == "" || readClayers == nil {
		return out, nil
	}
	found, err := readClayers(extraPath)
	if err != nil {
		return out, err
	}
	return append(out, found...), nil
}

// FilterByTarget applies the for-board/for-device soft-match filter
// (spec.md §4.7 step 2): name always required to match when present;
// vendor and device pname match only when both sides specify a value.
// The board revision is not compared.
func FilterByTarget(candidates []projmgr.Layer, device *projmgr.DeviceRef, board *projmgr.Board) []projmgr.Layer {
	var out []projmgr.Layer
	for _, l := range candidates {
		if l.ForDevice != nil && device != nil && !deviceSoftMatch(*l.ForDevice, *device) {
			continue
		}
		if l.ForBoard != nil && board != nil && !boardSoftMatch(*l.ForBoard, *board) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func deviceSoftMatch(want, have projmgr.DeviceRef) bool {
	if want.Name != "" && want.Name != have.Name {
		return false
	}
	if want.Vendor != "" && have.Vendor != "" && want.Vendor != have.Vendor {
		return false
	}
	if want.Pname != "" && have.Pname != "" && want.Pname != have.Pname {
		return false
	}
	return true
}

func boardSoftMatch(want projmgr.DeviceRef, have projmgr.Board) bool {
	if want.Name != "" && want.Name != have.Name {
		return false
	}
	if want.Vendor != "" && have.Vendor != "" && want.Vendor != have.Vendor {
		return false
	}
	return true
}

// ColumnKey returns the classification key for a layer's connection
// column (spec.md §4.7 step 3): the layer `type` when declared, else a
// stable hash-like key derived from the layer's file path so typeless
// layers still get their own column.
func ColumnKey(l projmgr.Layer) string {
	if l.Type != "" {
		return l.Type
	}
	return "path:" + filepath.ToSlash(l.Path)
}

// Columns groups candidate layers by ColumnKey, each column contributing
// one of its layers (or none, for optional layers) to a combination
// (spec.md §4.7 step 3).
func Columns(candidates []projmgr.Layer, optional map[string]bool) map[string][]*projmgr.Layer {
	cols := make(map[string][]*projmgr.Layer)
	for i := range candidates {
		l := &candidates[i]
		key := ColumnKey(*l)
		cols[key] = append(cols[key], l)
	}
	for key, layers := range cols {
		if len(layers) > 0 && optional[key] {
			cols[key] = append(layers, nil) // nil = "this column contributes nothing"
		}
	}
	return cols
}

// ConfigGroups groups a layer's own connections by ConfigID prefix
// (spec.md §4.7 step 4), returning the distinct `set` selector values
// available per config-id group — the select-combination axis.
func ConfigGroups(conns []projmgr.Connection) map[string][]string {
	groups := make(map[string]map[string]bool)
	for _, c := range conns {
		cfg := c.ConfigID()
		if groups[cfg] == nil {
			groups[cfg] = make(map[string]bool)
		}
		groups[cfg][c.Set] = true
	}
	out := make(map[string][]string, len(groups))
	for cfg, sets := range groups {
		for s := range sets {
			out[cfg] = append(out[cfg], s)
		}
	}
	return out
}

// connectionsForSet filters a layer's connections down to one chosen
// `set` selector per config-id group.
func connectionsForSet(conns []projmgr.Connection, chosen map[string]string) []projmgr.Connection {
	var out []projmgr.Connection
	for _, c := range conns {
		if want, ok := chosen[c.ConfigID()]; ok && c.Set != want {
			continue
		}
		out = append(out, c)
	}
	return out
}

// keyOf builds a stable sort/dedup key for a []projmgr.Connection slice.
func keyOf(conns []projmgr.Connection) string {
	var sb strings.Builder
	for _, c := range conns {
		sb.WriteString(c.Layer)
		sb.WriteByte('|')
		sb.WriteString(c.ID)
		sb.WriteByte(';')
	}
	return sb.String()
}
