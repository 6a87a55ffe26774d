// Package ctxbuild implements C4: the context builder — the cartesian
// product of projects × build-types × target-types, context-filter
// evaluation, and the cross-level precedence merge (spec.md §4.4).
package ctxbuild

import (
	"regexp"
	"strings"
)

// MatchesFilter implements the for-context/not-for-context grammar of
// spec.md §4.4: a pair (build,target) matches literally, with
// empty-wildcards on either side, or a full regex of the form
// "\.{build}\+{target}".
func MatchesFilter(pattern, build, target string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return true
	}

	if strings.HasPrefix(pattern, "\\.") || strings.Contains(pattern, "(") || strings.Contains(pattern, "[") {
		re, err := regexp.Compile("^" + pattern + "$")
		if err == nil {
			return re.MatchString("." + build + "+" + target)
		}
	}

	wantBuild, wantTarget := splitContextPattern(pattern)
	if wantBuild != "" && wantBuild != build {
		return false
	}
	if wantTarget != "" && wantTarget != target {
		return false
	}
	return true
}

// splitContextPattern parses a literal "[.build][+target]" filter
// pattern into its two components; either may be empty (wildcard).
func splitContextPattern(pattern string) (build, target string) {
	s := pattern
	if strings.HasPrefix(s, ".") {
		s = s[1:]
	}
	if idx := strings.IndexByte(s, '+'); idx >= 0 {
		build, target = s[:idx], s[idx+1:]
		return
	}
	if strings.HasPrefix(pattern, "+") {
		target = strings.TrimPrefix(pattern, "+")
		return "", target
	}
	return s, ""
}

// Included applies the for-context/not-for-context pair for one project
// against one (build,target) combination: include then exclude, per
// spec.md §9 Open Question (b), "the source applies include then
// exclude; preserved here".
func Included(forContext, notForContext []string, build, target string) bool {
	included := len(forContext) == 0
	for _, p := range forContext {
		if MatchesFilter(p, build, target) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range notForContext {
		if MatchesFilter(p, build, target) {
			return false
		}
	}
	return true
}

// TypeFilterIncluded applies a solution-wide type-filter: inclusion is
// OR, exclusion wins (spec.md §4.4).
func TypeFilterIncluded(include, exclude []string, build, target string) bool {
	included := len(include) == 0
	for _, p := range include {
		if MatchesFilter(p, build, target) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range exclude {
		if MatchesFilter(p, build, target) {
			return false
		}
	}
	return true
}
