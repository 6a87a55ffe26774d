package projmgr

import (
	"github.com/sirupsen/logrus"
)

// Workspace is the single entry point a host (CLI or test) constructs
// once per invocation: it owns the registry, the RTE model, and the
// parsed solution AST as read-only-after-init shared resources (spec.md
// §5: "the pack registry, the RTE model, the parser AST ... populated
// during an init phase and then become effectively read-only"). It
// holds no package-level state, so it is safe to construct more than
// once per process (spec.md §9 Design Notes: "Globals ... become
// process-wide services").
type Workspace struct {
	Env   Env
	Log   logrus.FieldLogger
	Diags *Diagnostics

	// Contexts holds every context collected from the solution, in
	// source processing order (spec.md §5: "Context processing order
	// follows the order in which contexts are collected").
	Contexts []*Context

	byName    map[string]*Context
	packPaths map[PackID]string

	// process is the per-context processing callback, wired by the
	// caller that drives context processing (e.g. cmd/projmgr) so that
	// EnsureProcessed can recurse into a not-yet-processed dependency
	// without Workspace depending on internal/ctxbuild, internal/rte,
	// etc. directly (spec.md §9: "expose them as explicit
	// collaborators").
	process func(*Context) error
}

// Registry is the minimal surface Workspace needs from C1, kept as an
// interface here so root code depends on a narrow contract rather than
// importing internal/registry's concrete type.
type Registry interface {
	LoadAll(policy LoadPacksPolicy, required []PackRequirement) ([]*Pack, error)
	LoadLocal(path string) (*Pack, error)
}

// NewWorkspace constructs an empty Workspace bound to env. Contexts are
// populated by AddContext as the csolution/cproject/clayer files are
// parsed and the cartesian product (C4) is built.
func NewWorkspace(env Env, log logrus.FieldLogger) *Workspace {
	if log == nil {
		log = logrus.New()
	}
	return &Workspace{
		Env: env, Log: log, Diags: NewDiagnostics(),
		byName:    map[string]*Context{},
		packPaths: map[PackID]string{},
	}
}

// SetProcessor wires the callback EnsureProcessed uses to resolve a
// not-yet-processed context on demand.
func (w *Workspace) SetProcessor(f func(*Context) error) { w.process = f }

// AddContext registers one context produced by the context builder
// (C4), keyed by its canonical name for later EnsureProcessed lookups.
func (w *Workspace) AddContext(ctx *Context) {
	w.Contexts = append(w.Contexts, ctx)
	w.byName[ctx.Name.String()] = ctx
}

// Context looks up a previously added context by name.
func (w *Workspace) Context(name ContextName) (*Context, bool) {
	c, ok := w.byName[name.String()]
	return c, ok
}

// RecordPackPath records the absolute directory of a loaded pack, so
// later $Pack(...)$ access-sequence lookups can resolve it (spec.md
// §4.9: "resolves to the absolute path of the matching loaded pack").
func (w *Workspace) RecordPackPath(id PackID, path string) {
	w.packPaths[id] = path
}

// EnsureProcessed satisfies internal/expand.Resolver: it returns the
// named context, processing it first via the wired processor if it has
// not yet had its own precedences resolved (spec.md §4.9: "the
// referenced context's precedences must have been processed first;
// processing is recursive and memoised").
func (w *Workspace) EnsureProcessed(name ContextName) (*Context, error) {
	ctx, ok := w.byName[name.String()]
	if !ok {
		return nil, &Diagnostic{Kind: KindReference, Message: "unknown or unselected context " + name.String()}
	}
	if !ctx.PrecedencesDone && w.process != nil {
		if err := w.process(ctx); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// PackPath satisfies internal/expand.Resolver's $Pack(...)$ lookup,
// matching on vendor/name and, if given, an exact version.
func (w *Workspace) PackPath(spec string) (string, bool) {
	id, err := ParsePackID(spec)
	if err != nil {
		return "", false
	}
	for recorded, path := range w.packPaths {
		if recorded.Vendor != id.Vendor || recorded.Name != id.Name {
			continue
		}
		if id.Version == "" || recorded.Version == id.Version {
			return path, true
		}
	}
	return "", false
}

// SortedContextNames returns every registered context name in source
// order, the order cbuild-idx.yml reflects (spec.md §5).
func (w *Workspace) SortedContextNames() []string {
	names := make([]string, 0, len(w.Contexts))
	for _, c := range w.Contexts {
		names = append(names, c.Name.String())
	}
	return names
}

// ByBuildable partitions processed contexts by whether every selected
// component cleared the lattice bar, preserving collection order within
// each partition (spec.md §3).
func (w *Workspace) ByBuildable() (buildable, notBuildable []*Context) {
	for _, c := range w.Contexts {
		if c.Buildable() {
			buildable = append(buildable, c)
		} else {
			notBuildable = append(notBuildable, c)
		}
	}
	return buildable, notBuildable
}
