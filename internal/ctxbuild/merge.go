package ctxbuild

import (
	"fmt"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// Level names the precedence chain from spec.md §4.4: "the ordered list
// is {cproject, csolution, target-type, build-type, setups[],
// clayers[]}". Scalars may be set at exactly one level (multiple
// distinct non-empty values across levels is a hard conflict); vectors
// set-union with "del" subtracting from the accumulated "add" set.
type Level struct {
	Name    string
	Options projmgr.BuildOptions
}

// Merge folds a precedence-ordered list of BuildOptions levels into one
// resolved BuildOptions, a global-then-target merge generalized from
// two levels to the full six-level chain.
func Merge(levels []Level) (projmgr.BuildOptions, error) {
	var out projmgr.BuildOptions
	var err error

	if out.Compiler, err = mergeScalar(levels, "Compiler", func(o projmgr.BuildOptions) string { return o.Compiler }); err != nil {
		return out, err
	}
	if out.Optimize, err = mergeScalar(levels, "Optimize", func(o projmgr.BuildOptions) string { return o.Optimize }); err != nil {
		return out, err
	}
	if out.Debug, err = mergeScalar(levels, "Debug", func(o projmgr.BuildOptions) string { return o.Debug }); err != nil {
		return out, err
	}
	if out.Warnings, err = mergeScalar(levels, "Warnings", func(o projmgr.BuildOptions) string { return o.Warnings }); err != nil {
		return out, err
	}
	if out.LanguageC, err = mergeScalar(levels, "LanguageC", func(o projmgr.BuildOptions) string { return o.LanguageC }); err != nil {
		return out, err
	}
	if out.LanguageCpp, err = mergeScalar(levels, "LanguageCpp", func(o projmgr.BuildOptions) string { return o.LanguageCpp }); err != nil {
		return out, err
	}

	out.Defines = mergeAddDel(levels,
		func(o projmgr.BuildOptions) []string { return o.Defines }, nil)
	out.Undefines = mergeAddDel(levels,
		func(o projmgr.BuildOptions) []string { return o.Undefines }, nil)
	out.AddPaths = mergeAddDel(levels,
		func(o projmgr.BuildOptions) []string { return o.AddPaths },
		func(o projmgr.BuildOptions) []string { return o.DelPaths })
	out.Misc = mergeAddDel(levels,
		func(o projmgr.BuildOptions) []string { return o.Misc }, nil)

	return out, nil
}

func mergeScalar(levels []Level, field string, get func(projmgr.BuildOptions) string) (string, error) {
	var value string
	var setBy string
	for _, l := range levels {
		v := get(l.Options)
		if v == "" {
			continue
		}
		if value == "" {
			value, setBy = v, l.Name
			continue
		}
		if v != value {
			return "", fmt.Errorf("conflicting %s: %q (from %s) vs %q (from %s)", field, value, setBy, v, l.Name)
		}
	}
	return value, nil
}

// mergeAddDel unions every level's "add" vector, then subtracts every
// level's "del" vector (spec.md §4.4: "set-union with 'add' lists
// taking union then 'del' lists subtracting"). When del is nil, the
// field has no del-counterpart (e.g. defines/misc).
func mergeAddDel(levels []Level, getAdd, getDel func(projmgr.BuildOptions) []string) []string {
	seen := make(map[string]bool)
	var ordered []string
	for _, l := range levels {
		for _, v := range getAdd(l.Options) {
			if !seen[v] {
				seen[v] = true
				ordered = append(ordered, v)
			}
		}
	}
	if getDel == nil {
		return ordered
	}
	del := make(map[string]bool)
	for _, l := range levels {
		for _, v := range getDel(l.Options) {
			del[v] = true
		}
	}
	out := ordered[:0:0]
	for _, v := range ordered {
		if !del[v] {
			out = append(out, v)
		}
	}
	return out
}
