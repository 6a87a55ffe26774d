package emit

import (
	"strings"

	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// resolvedPackRow is one entry of the rendered cbuild-pack.yml document,
// mirroring projmgr.ResolvedPackEntry/projmgr.CbuildPack.
type resolvedPackRow struct {
	pack       projmgr.PackID
	selectedBy []string
}

// BuildPackList implements spec.md §4.10's pack-list emission
// procedure: seed from disk (unless refreshAll), add every pack
// actually referenced by a selected component, attach each user
// selector expression as selected-by-pack history on every matching
// resolved pack, then sort by (vendor, name, semver) ascending.
func BuildPackList(existing projmgr.CbuildPack, refreshAll bool, referencedPacks []projmgr.PackID, selectors map[projmgr.PackID][]string) projmgr.CbuildPack {
	rows := map[projmgr.PackID]*resolvedPackRow{}

	if !refreshAll {
		for _, e := range existing.Packs {
			id, err := projmgr.ParsePackID(e.Resolved)
			if err != nil {
				continue
			}
			rows[id] = &resolvedPackRow{pack: id, selectedBy: append([]string{}, e.SelectedBy...)}
		}
	}

	for _, id := range referencedPacks {
		if rows[id] == nil {
			rows[id] = &resolvedPackRow{pack: id}
		}
	}

	for id, exprs := range selectors {
		row, ok := rows[id]
		if !ok {
			continue
		}
		for _, expr := range exprs {
			row.selectedBy = appendUnique(row.selectedBy, expr)
		}
	}

	var ids []projmgr.PackID
	for id := range rows {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, comparePackID)

	out := projmgr.CbuildPack{}
	for _, id := range ids {
		row := rows[id]
		out.Packs = append(out.Packs, projmgr.ResolvedPackEntry{Resolved: row.pack.String(), SelectedBy: row.selectedBy})
	}
	return out
}

func appendUnique(s []string, v string) []string {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// comparePackID implements the "(vendor, name, semver) ascending" sort
// key from spec.md §4.10 step 4.
func comparePackID(a, b projmgr.PackID) int {
	if a.Vendor != b.Vendor {
		return strings.Compare(a.Vendor, b.Vendor)
	}
	if a.Name != b.Name {
		return strings.Compare(a.Name, b.Name)
	}
	av, aerr := a.SemVer()
	bv, berr := b.SemVer()
	if aerr != nil || berr != nil {
		return strings.Compare(a.Version, b.Version)
	}
	switch {
	case av.LessThan(bv):
		return -1
	case bv.LessThan(av):
		return 1
	default:
		return 0
	}
}
