package components

import (
	"fmt"
	"path"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// GpdscPath returns the working-directory-relative gpdsc path a
// generator writes and a context later reads back component/file
// entries from (spec.md §4.6: "<workingDir>/<id>.gpdsc").
func GpdscPath(workingDir string, gen projmgr.Generator) string {
	return path.Join(workingDir, gen.ID+".gpdsc")
}

// GeneratorForComponent resolves the projmgr.Generator a selected
// component invokes, looked up by the component's Generator field
// against the pack's generator table.
func GeneratorForComponent(pack *projmgr.Pack, c projmgr.Component) (projmgr.Generator, bool) {
	if c.Generator == "" {
		return projmgr.Generator{}, false
	}
	for _, g := range pack.Generators {
		if g.ID == c.Generator {
			return g, true
		}
	}
	return projmgr.Generator{}, false
}

// MergeGenerated reconciles a generator-produced gpdsc pack's
// components into the context's selection: a bootstrap component (the
// one that declared the generator) is replaced by whatever the gpdsc
// now offers, and any other generated component absent from the
// previous run is added (spec.md §4.6: "generator output replaces the
// bootstrap entry and adds any new components it declares").
func MergeGenerated(existing []projmgr.SelectedComponent, bootstrapAggregateID string, generated []projmgr.Component) []projmgr.SelectedComponent {
	out := make([]projmgr.SelectedComponent, 0, len(existing)+len(generated))
	for _, sc := range existing {
		if sc.ID.AggregateID() == bootstrapAggregateID {
			continue
		}
		out = append(out, sc)
	}
	seen := make(map[string]bool, len(out))
	for _, sc := range out {
		seen[sc.ID.AggregateID()] = true
	}
	for _, c := range generated {
		if seen[c.ID.AggregateID()] {
			continue
		}
		seen[c.ID.AggregateID()] = true
		out = append(out, projmgr.SelectedComponent{
			Component:  c,
			SelectedBy: fmt.Sprintf("generator:%s", c.Generator),
		})
	}
	return out
}
