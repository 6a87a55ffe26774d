package ctxbuild

import (
	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// ProjectSpec is the minimal shape the builder needs from a parsed
// cproject reference plus its owning csolution (spec.md §4.4).
type ProjectSpec struct {
	Name          string
	ForContext    []string
	NotForContext []string
}

// Build enumerates projects × build-types × target-types in source
// order (spec.md §5: "Context processing order follows the order in
// which contexts are collected ... projects in source order × build-
// types in source order × target-types in source order"), applying
// per-project for-context/not-for-context filters and the solution-wide
// type-filter.
func Build(projects []ProjectSpec, buildTypes, targetTypes []string, typeFilter projmgr.TypeFilter) []projmgr.ContextName {
	// A solution with no declared build-types/target-types still
	// produces one context per project (the empty build/target is the
	// degenerate cartesian factor).
	builds := buildTypes
	if len(builds) == 0 {
		builds = []string{""}
	}
	targets := targetTypes
	if len(targets) == 0 {
		targets = []string{""}
	}

	var out []projmgr.ContextName
	for _, p := range projects {
		for _, b := range builds {
			for _, t := range targets {
				if !Included(p.ForContext, p.NotForContext, b, t) {
					continue
				}
				if !TypeFilterIncluded(typeFilter.Include, typeFilter.Exclude, b, t) {
					continue
				}
				out = append(out, projmgr.ContextName{Project: p.Name, Build: b, Target: t})
			}
		}
	}
	return out
}
