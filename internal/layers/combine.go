package layers

import (
	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Candidate is one layer's contribution to a combination: the layer
// itself (nil for an optional column contributing nothing) and the
// connections selected from it via one `set`-combination choice.
type Candidate struct {
	Layer       *projmgr.Layer
	Connections []projmgr.Connection
}

// EnumerateColumnChoices expands one column's select-combinations
// (spec.md §4.7 step 4): for each candidate layer in the column, every
// combination of config-id group selections is its own Candidate,
// plus one Candidate per nil (optional, contributes-nothing) entry.
func EnumerateColumnChoices(column []*projmgr.Layer) []Candidate {
	var out []Candidate
	for _, l := range column {
		if l == nil {
			out = append(out, Candidate{})
			continue
		}
		groups := ConfigGroups(l.Connections)
		for _, chosen := range cartesianSets(groups) {
			out = append(out, Candidate{Layer: l, Connections: connectionsForSet(l.Connections, chosen)})
		}
	}
	return out
}

// cartesianSets enumerates every combination of one selector per
// config-id group, in deterministic (sorted key) order.
func cartesianSets(groups map[string][]string) []map[string]string {
	if len(groups) == 0 {
		return []map[string]string{{}}
	}
	var cfgs []string
	for cfg := range groups {
		cfgs = append(cfgs, cfg)
	}
	slices.Sort(cfgs)

	combos := []map[string]string{{}}
	for _, cfg := range cfgs {
		sets := append([]string{}, groups[cfg]...)
		slices.Sort(sets)
		var next []map[string]string
		for _, base := range combos {
			for _, s := range sets {
				m := make(map[string]string, len(base)+1)
				for k, v := range base {
					m[k] = v
				}
				m[cfg] = s
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

// Combination is one cross-product pick across all columns plus the
// project's own in-project connections (spec.md §4.7 step 5).
type Combination struct {
	Picks       []Candidate
	Connections []projmgr.Connection // project in-project connections, always active
}

// CrossProduct enumerates every combination across columns, deduping
// identical connection sets (spec.md §4.7 step 5: "cap implicit by
// dedup").
func CrossProduct(columns map[string][]*projmgr.Layer, projectConns []projmgr.Connection) []Combination {
	var colNames []string
	for name := range columns {
		colNames = append(colNames, name)
	}
	slices.Sort(colNames)

	choicesPerColumn := make([][]Candidate, len(colNames))
	for i, name := range colNames {
		choicesPerColumn[i] = EnumerateColumnChoices(columns[name])
	}

	var combos [][]Candidate
	combos = append(combos, nil)
	for _, choices := range choicesPerColumn {
		if len(choices) == 0 {
			continue
		}
		var next [][]Candidate
		for _, base := range combos {
			for _, c := range choices {
				picks := append(append([]Candidate{}, base...), c)
				next = append(next, picks)
			}
		}
		combos = next
	}

	seen := make(map[string]bool)
	var out []Combination
	for _, picks := range combos {
		var all []projmgr.Connection
		all = append(all, projectConns...)
		for _, p := range picks {
			all = append(all, p.Connections...)
		}
		k := keyOf(all)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Combination{Picks: picks, Connections: projectConns})
	}
	return out
}
