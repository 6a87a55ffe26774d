package components

import (
	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Apply matches every component request against the catalog and adds
// the winners to ctx, surfacing duplicate-aggregate conflicts (spec.md
// §3 invariant 1) and unmatched requests as diagnostics rather than
// aborting the whole context (spec.md §6: "processing continues across
// independent contexts after a component/condition failure").
func Apply(cat Catalog, target projmgr.TargetFilter, filter *projmgr.PackFilter, ctx *projmgr.Context, requests []projmgr.ComponentRequest, diags *projmgr.Diagnostics) {
	for _, req := range requests {
		c, err := Match(cat, target, filter, req)
		if err != nil {
			diags.Errorf(projmgr.KindDependency, ctx.Name.String(), "resolving component %q: %v", req.Component, err)
			continue
		}

		sc := projmgr.SelectedComponent{Component: c, SelectedBy: req.Component}
		if req.Instances > 0 {
			sc.MaxInstances = req.Instances
		}
		if err := ctx.AddComponent(sc); err != nil {
			diags.Errorf(projmgr.KindDependency, ctx.Name.String(), "%v", err)
		}
	}
}
