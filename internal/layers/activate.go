package layers

import (
	"fmt"

	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// allConnections flattens a Combination's project connections plus every
// pick's connections into one slice; each keeps the Layer path it
// already carries.
func allConnections(comb Combination) []projmgr.Connection {
	out := append([]projmgr.Connection{}, comb.Connections...)
	for _, p := range comb.Picks {
		out = append(out, p.Connections...)
	}
	return out
}

// ActiveSet computes the active subset of connections for a combination
// by fixpoint propagation (spec.md §4.7 step 6): a connection is active
// if it is in-project, has no provides, or at least one provided key
// matches a consumed key of another already-active connection.
func ActiveSet(comb Combination) []projmgr.Connection {
	all := allConnections(comb)
	active := make([]bool, len(all))

	for i, c := range all {
		if c.InProject || len(c.Provides) == 0 {
			active[i] = true
		}
	}

	for changed := true; changed; {
		changed = false
		consumed := consumedKeys(all, active)
		for i, c := range all {
			if active[i] {
				continue
			}
			if providesAnyOf(c, consumed) {
				active[i] = true
				changed = true
			}
		}
	}

	var out []projmgr.Connection
	for i, c := range all {
		if active[i] {
			out = append(out, c)
		}
	}
	return out
}

func consumedKeys(all []projmgr.Connection, active []bool) map[string]bool {
	keys := make(map[string]bool)
	for i, c := range all {
		if !active[i] {
			continue
		}
		for _, p := range c.Consumes {
			keys[p.Key] = true
		}
	}
	return keys
}

func providesAnyOf(c projmgr.Connection, consumed map[string]bool) bool {
	for _, p := range c.Provides {
		if consumed[p.Key] {
			return true
		}
	}
	return false
}

// Validate checks an active set for conflicts, overflows, and
// incompatibles (spec.md §4.7 step 7). Orphan detection needs the full
// set of candidate picks, not just the post-propagation active set, so
// it lives in ValidateCombination instead.
func Validate(active []projmgr.Connection) projmgr.ConnectionValidation {
	v := projmgr.ConnectionValidation{Valid: true, Conflicts: map[string][]string{}, Overflows: map[string]string{}, Incompatibles: map[string]string{}}

	providers := map[string][]string{}     // key -> contributing layer names
	providedValue := map[string]projmgr.ConnectValue{}
	for _, c := range active {
		for _, p := range c.Provides {
			providers[p.Key] = append(providers[p.Key], layerLabel(c))
			providedValue[p.Key] = p.Value
		}
	}
	for key, layersFor := range providers {
		if len(layersFor) > 1 {
			v.Conflicts[key] = layersFor
			v.Valid = false
		}
	}

	consumedSum := map[string]int{}
	consumedHasAdd := map[string]bool{}
	for _, c := range active {
		for _, cons := range c.Consumes {
			pv, ok := providedValue[cons.Key]
			if !ok {
				v.Incompatibles[cons.Key] = "not provided"
				v.Valid = false
				continue
			}
			if !cons.Value.IsInt && !pv.IsInt {
				if cons.Value.Str != pv.Str {
					v.Incompatibles[cons.Key] = fmt.Sprintf("required %q does not match provided %q", cons.Value.Str, pv.Str)
					v.Valid = false
				}
				continue
			}
			if cons.Value.Add {
				consumedSum[cons.Key] += cons.Value.Int
				consumedHasAdd[cons.Key] = true
			}
		}
	}
	for key, sum := range consumedSum {
		if !consumedHasAdd[key] {
			continue
		}
		provided := providedValue[key].Int
		if sum > provided {
			v.Overflows[key] = fmt.Sprintf("%d > %d", sum, provided)
			v.Valid = false
		}
	}

	return v
}

// ValidateCombination runs Validate over comb's propagated active set and
// additionally flags any non-project pick whose connections never made it
// into that active set (spec.md §4.7 step 7: orphan layers are allowed
// only for the top-level project; testable property 3 requires a valid
// combination's missedCollections to be empty).
//
// A connection with Provides only becomes active in ActiveSet when some
// other active connection consumes one of its keys (rule (c)); scanning
// just the resulting active slice can never find an orphan; by
// construction every connection that reaches it was already consumed by
// something. The check has to walk every candidate pick instead, the way
// ProjMgrWorker::ValidateConnections walks every picked layer collection
// rather than only the ones that ended up active.
func ValidateCombination(comb Combination) (projmgr.ConnectionValidation, []projmgr.Connection) {
	active := ActiveSet(comb)
	v := Validate(active)

	activeIDs := make(map[string]bool, len(active))
	for _, c := range active {
		activeIDs[c.ID] = true
	}

	var missed []string
	for _, p := range comb.Picks {
		if p.Layer == nil || len(p.Connections) == 0 {
			continue
		}
		matched := false
		for _, c := range p.Connections {
			if activeIDs[c.ID] {
				matched = true
				break
			}
		}
		if !matched {
			missed = append(missed, p.Layer.Path)
		}
	}
	if len(missed) > 0 {
		slices.Sort(missed)
		v.MissedCollections = missed
		v.Valid = false
	}

	return v, active
}

func layerLabel(c projmgr.Connection) string {
	if c.InProject {
		return "(project)"
	}
	return c.Layer
}

// Solve validates each of the given candidate combinations and returns
// only the valid ones, each carrying its active set, with combinations
// that are subsets of another removed by DropSubsets (spec.md §4.7 steps
// 6-8).
func Solve(combos []Combination) []projmgr.LayerCombination {
	var valid []projmgr.LayerCombination
	for _, comb := range combos {
		v, active := ValidateCombination(comb)
		if !v.Valid {
			continue
		}

		lc := projmgr.LayerCombination{Active: active, SetSelectors: map[string][]string{}}
		for _, p := range comb.Picks {
			if p.Layer == nil {
				continue
			}
			lc.Layers = append(lc.Layers, p.Layer.Path)
			for _, c := range p.Connections {
				lc.SetSelectors[p.Layer.Path] = appendUnique(lc.SetSelectors[p.Layer.Path], c.Set)
			}
		}
		valid = append(valid, lc)
	}
	return DropSubsets(valid)
}

func appendUnique(s []string, v string) []string {
	if v == "" {
		return s
	}
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// DropSubsets removes combinations whose participating layer set is a
// subset of another valid combination's (spec.md §4.7 step 8).
func DropSubsets(combos []projmgr.LayerCombination) []projmgr.LayerCombination {
	var out []projmgr.LayerCombination
	for i, a := range combos {
		subset := false
		for j, b := range combos {
			if i == j || len(b.Layers) <= len(a.Layers) {
				continue
			}
			if isSubset(a.Layers, b.Layers) {
				subset = true
				break
			}
		}
		if !subset {
			out = append(out, a)
		}
	}
	return out
}

func isSubset(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, v := range b {
		set[v] = true
	}
	for _, v := range a {
		if !set[v] {
			return false
		}
	}
	return true
}

// Report returns, per layer path, the distinct `set` selectors that
// participate in any valid combination (spec.md §4.7: "Deterministic
// layer reporting").
func Report(combos []projmgr.LayerCombination) map[string][]string {
	out := map[string][]string{}
	for _, c := range combos {
		for layer, sets := range c.SetSelectors {
			for _, s := range sets {
				out[layer] = appendUnique(out[layer], s)
			}
		}
	}
	for layer := range out {
		slices.Sort(out[layer])
	}
	return out
}
