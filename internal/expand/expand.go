// Package expand implements C9: the access-sequence expander (spec.md
// §4.9), built around a Get/Keys environment abstraction fed into word
// expansion, generalized from shell-arg substitution to the richer
// access-sequence grammar of §4.9, with per-context recursive memoized
// resolution and cycle detection.
package expand

import (
	"path/filepath"
	"regexp"
	"strings"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// sequenceRe recognizes both static variables ($Name$) and function
// sequences ($Name(args)$), compiled once per process rather than per
// call (spec.md §9 Design Notes: "regexes ... compiled once and
// reused").
var sequenceRe = regexp.MustCompile(`\$([A-Za-z]+)(?:\(([^)]*)\))?\$`)

// outputSequences maps a function sequence name to the OutputKind it
// resolves against a context's Outputs map. "OutDir" is handled
// separately since it reads Dirs.OutDir rather than Outputs.
var outputSequences = map[string]projmgr.OutputKind{
	"Elf":  projmgr.OutputELF,
	"Bin":  projmgr.OutputBIN,
	"Hex":  projmgr.OutputHEX,
	"Lib":  projmgr.OutputLIB,
	"Cmse": projmgr.OutputCMSE,
	"Map":  projmgr.OutputMAP,
}

// Resolver provides the collaborators the expander needs beyond the
// context being expanded: recursive context resolution and pack path
// lookup. A Workspace implements this (spec.md §5: "access-sequence
// resolution reenters the processor recursively").
type Resolver interface {
	// EnsureProcessed processes the named context's own precedences (if
	// not already done) and returns it, or an error if the context is
	// unknown or not selected.
	EnsureProcessed(name projmgr.ContextName) (*projmgr.Context, error)
	// PackPath resolves "vendor::name[@ver]" to the absolute path of the
	// matching loaded pack.
	PackPath(spec string) (string, bool)
}

// Expander expands access sequences against one context, recursing into
// other contexts through a Resolver and guarding against cycles with an
// in-progress set keyed by context name (spec.md §4.9, §5).
type Expander struct {
	res         Resolver
	solutionDir string
	inProgress  map[string]bool
	undefined   map[string]bool
}

// New builds an Expander. solutionDir is the absolute directory of the
// csolution file, used by $SolutionDir()$.
func New(res Resolver, solutionDir string) *Expander {
	return &Expander{res: res, solutionDir: solutionDir, inProgress: map[string]bool{}, undefined: map[string]bool{}}
}

// Undefined returns the set of user variable names referenced but never
// defined, collected across every Expand call (spec.md §4.9: "the list
// is reported to the caller for interactive layer selection").
func (e *Expander) Undefined() []string {
	out := make([]string, 0, len(e.undefined))
	for k := range e.undefined {
		out = append(out, k)
	}
	return out
}

// Expand resolves every access sequence in s against ctx, returning the
// expanded string and the set of other contexts it depended on (for the
// build graph). projectDir is the absolute directory of the owning
// cproject file.
func (e *Expander) Expand(ctx *projmgr.Context, s, projectDir string) (string, []projmgr.ContextName, error) {
	var depends []projmgr.ContextName
	var firstErr error

	name := ctx.Name.String()
	if e.inProgress[name] {
		return s, nil, &projmgr.Diagnostic{Kind: projmgr.KindReference, Context: name, Message: "cyclic access-sequence reference to " + name}
	}
	e.inProgress[name] = true
	defer delete(e.inProgress, name)

	out := sequenceRe.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := sequenceRe.FindStringSubmatch(match)
		name, arg := m[1], m[2]

		if v, ok := e.staticVar(ctx, name); ok {
			return v
		}
		if v, ok := ctx.Variables[name]; ok {
			return v
		}

		switch name {
		case "SolutionDir":
			return e.solutionDir
		case "ProjectDir":
			return projectDir
		case "OutDir":
			val, deps, err := e.resolveOutputSeq(ctx, arg, func(c *projmgr.Context) (string, bool) { return c.Dirs.OutDir, c.Dirs.OutDir != "" }, projectDir)
			if err != nil {
				firstErr = err
				return match
			}
			depends = append(depends, deps...)
			return val
		case "Pack":
			p, ok := e.res.PackPath(arg)
			if !ok {
				firstErr = &projmgr.PackNotFoundError{Vendor: arg}
				return match
			}
			return p
		}

		if kind, ok := outputSequences[name]; ok {
			val, deps, err := e.resolveOutputSeq(ctx, arg, func(c *projmgr.Context) (string, bool) {
				v, ok := c.Outputs[kind]
				return v, ok
			}, projectDir)
			if err != nil {
				firstErr = err
				return match
			}
			depends = append(depends, deps...)
			return val
		}

		// Unrecognized sequence: treat as an undefined user variable
		// reference (spec.md §4.9: "undefined user variables collect to a
		// set").
		e.undefined[name] = true
		return match
	})

	if firstErr != nil {
		return "", nil, firstErr
	}
	return out, depends, nil
}

func (e *Expander) staticVar(ctx *projmgr.Context, name string) (string, bool) {
	switch name {
	case "Solution":
		return ctx.Name.Project, true // csolution base name mirrors project in this model
	case "Project":
		return ctx.Name.Project, true
	case "BuildType":
		return ctx.Name.Build, true
	case "TargetType":
		return ctx.Name.Target, true
	case "Pname":
		return ctx.Pname, true
	case "Compiler":
		return ctx.Toolchain.Name, true
	case "Dname":
		if ctx.Device != nil {
			return ctx.Device.FullName(), true
		}
		return "", true
	case "Bname":
		if ctx.Board != nil {
			return ctx.Board.FullName(), true
		}
		return "", true
	}
	return "", false
}

// resolveOutputSeq resolves a "$Func(context)$" style sequence: it
// ensures the referenced context (or ctx itself, if arg is empty) has
// been processed, reads the requested value, then normalizes the result
// relative to projectDir/ctx's own output directory (spec.md §4.9).
func (e *Expander) resolveOutputSeq(ctx *projmgr.Context, arg string, read func(*projmgr.Context) (string, bool), projectDir string) (string, []projmgr.ContextName, error) {
	target := ctx
	var depends []projmgr.ContextName

	if arg != "" {
		name := parseContextArg(arg, ctx.Name)
		resolved, err := e.res.EnsureProcessed(name)
		if err != nil {
			return "", nil, &projmgr.Diagnostic{Kind: projmgr.KindReference, Context: ctx.Name.String(), Message: "resolving " + name.String() + ": " + err.Error(), Cause: err}
		}
		target = resolved
		depends = append(depends, name)
	}

	val, ok := read(target)
	if !ok {
		return "", nil, &projmgr.Diagnostic{Kind: projmgr.KindReference, Context: ctx.Name.String(), Message: "referenced value not available on context " + target.Name.String()}
	}

	return normalizeRelative(val, ctx.Dirs.OutDir), depends, nil
}

// parseContextArg parses a context argument of the form
// "[project.]build[+target]" into a full ContextName, taking any part
// that is left out from the caller. A name without a '.' is read as the
// build type, so "Boot+TZ" keeps the caller's project; another project
// is named with its "project." prefix, as in "Boot.+TZ".
func parseContextArg(arg string, caller projmgr.ContextName) projmgr.ContextName {
	name := caller
	rest := arg
	if idx := strings.IndexByte(rest, '.'); idx >= 0 {
		name.Project, rest = rest[:idx], rest[idx+1:]
	}
	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		name.Build, name.Target = rest[:idx], rest[idx+1:]
	} else if rest != "" {
		name.Build = rest
	}
	return name
}

// normalizeRelative makes an absolute expanded value relative to the
// caller's output directory, prefixed with "./" unless it already
// starts with "." (spec.md §4.9:
// "Relative-path normalisation happens after expansion").
func normalizeRelative(value, outDir string) string {
	if !filepath.IsAbs(value) || outDir == "" {
		return value
	}
	rel, err := filepath.Rel(outDir, value)
	if err != nil {
		return value
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}
