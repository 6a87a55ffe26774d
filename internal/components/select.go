// Package components implements C6: component selection — matching a
// component request string against the RTE model, applying the
// full-field-equality preference and default-variant rules, and
// enforcing aggregate-id uniqueness within a context (spec.md §4.6).
package components

import (
	"sort"
	"strings"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Catalog is the subset of rte.Model that component selection needs.
type Catalog interface {
	FilteredComponents(target projmgr.TargetFilter, filter *projmgr.PackFilter) map[string]projmgr.Component
}

// ParseRequest splits a component request string on ':' and '@' into
// its Cclass/Cgroup/Csub/Cvariant tokens and an optional version spec,
// per spec.md §4.6: "a request is a ':'-separated subset of the
// aggregate id fields, in order, with an optional '@version' suffix".
func ParseRequest(req string) (tokens []string, versionSpec string) {
	base, ver, hasVer := strings.Cut(req, "@")
	if hasVer {
		versionSpec = ver
	}
	for _, tok := range strings.Split(base, ":") {
		tokens = append(tokens, strings.TrimSpace(tok))
	}
	return tokens, versionSpec
}

// candidateTokens returns the ordered field tokens of a component's
// aggregate id, skipping Cvendor/Cbundle which are not part of the
// ':'-separated class:group:sub:variant request chain.
func candidateTokens(id projmgr.ComponentID) []string {
	return []string{id.Cclass, id.Cgroup, id.Csub, id.Cvariant}
}

// matchesTokens reports whether every non-empty requested token equals
// the candidate's token at the same position (a left-to-right subset
// match, spec.md §4.6).
func matchesTokens(reqTokens, candTokens []string) bool {
	for i, t := range reqTokens {
		if t == "" {
			continue
		}
		if i >= len(candTokens) || candTokens[i] != t {
			return false
		}
	}
	return true
}

// allFieldsGiven reports whether the request supplied every token up
// to the candidate's field count, i.e. an exact rather than partial
// match (spec.md §4.6: "a full match is preferred over a partial one").
func allFieldsGiven(reqTokens, full []string) bool {
	if len(reqTokens) < len(full) {
		return false
	}
	for _, t := range reqTokens[:len(full)] {
		if t == "" {
			return false
		}
	}
	return true
}

// Match selects the component matching a ComponentRequest against the
// catalog, preferring an exact full-field match over a partial subset
// match, and a component's declared default variant when the request
// omits Cvariant and multiple variants remain (spec.md §4.6).
func Match(cat Catalog, target projmgr.TargetFilter, filter *projmgr.PackFilter, req projmgr.ComponentRequest) (projmgr.Component, error) {
	all := cat.FilteredComponents(target, filter)

	reqTokens, versionSpec := ParseRequest(req.Component)
	var vr projmgr.VersionRange
	if versionSpec != "" {
		var err error
		vr, err = projmgr.ParseVersionRange(versionSpec)
		if err != nil {
			return projmgr.Component{}, err
		}
	}

	var candidates []projmgr.Component
	for _, c := range all {
		if !matchesTokens(reqTokens, candidateTokens(c.ID)) {
			continue
		}
		if versionSpec != "" {
			sv, err := c.ID.SemVer()
			if err != nil || !vr.Matches(sv) {
				continue
			}
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return projmgr.Component{}, &componentNotFoundError{req: req.Component}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	// Prefer an exact full-field match over a partial subset match.
	var exact []projmgr.Component
	for _, c := range candidates {
		if allFieldsGiven(reqTokens, candidateTokens(c.ID)) {
			exact = append(exact, c)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		candidates = exact
	}

	// Fall back to the declared default variant.
	var defaults []projmgr.Component
	for _, c := range candidates {
		if c.IsDefault {
			defaults = append(defaults, c)
		}
	}
	if len(defaults) == 1 {
		return defaults[0], nil
	}
	if len(defaults) > 1 {
		candidates = defaults
	}

	// Deterministic tie-break: highest semantic version, falling back to
	// lexical order on unparsable versions.
	sort.Slice(candidates, func(i, j int) bool {
		vi, ei := candidates[i].ID.SemVer()
		vj, ej := candidates[j].ID.SemVer()
		if ei != nil || ej != nil {
			return candidates[i].ID.FullID() < candidates[j].ID.FullID()
		}
		return vi.LessThan(vj)
	})
	return candidates[len(candidates)-1], nil
}

type componentNotFoundError struct{ req string }

func (e *componentNotFoundError) Error() string { return "component not found for request: " + e.req }
