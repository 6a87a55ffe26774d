// Command projmgr is a thin CLI wrapper over the projmgr core. CLI
// parsing is explicitly out of scope for the core (spec.md §1/§6), so
// this is the one ambient concern intentionally left on the standard
// `flag` package rather than a third-party CLI framework — the core
// itself is reachable without it via projmgr.NewWorkspace and the
// internal/* packages.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
	"github.com/open-cmsis-pack/projmgr-go/internal/components"
	"github.com/open-cmsis-pack/projmgr-go/internal/ctxbuild"
	"github.com/open-cmsis-pack/projmgr-go/internal/emit"
	"github.com/open-cmsis-pack/projmgr-go/internal/registry"
	"github.com/open-cmsis-pack/projmgr-go/internal/resolve"
	"github.com/open-cmsis-pack/projmgr-go/internal/rte"
	"github.com/open-cmsis-pack/projmgr-go/internal/yamlio"
)

func main() {
	var (
		contextGlob = flag.String("context", "", "context selector in for-context filter form ([.build][+target]); the project name is not matched")
		toolchain   = flag.String("toolchain", "", "compiler spec name[@version]")
		outDir      = flag.String("output", ".", "output directory for generated cbuild artefacts")
		loadPolicy  = flag.String("load-packs-policy", string(projmgr.PolicyDefault), "default|latest|all|required")
		dryRun      = flag.Bool("dry-run", false, "report planned actions without writing artefacts")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: projmgr [flags] <solution.csolution.yml>")
		os.Exit(2)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	os.Exit(run(flag.Arg(0), cliOptions{
		contextGlob: *contextGlob,
		toolchain:   *toolchain,
		outDir:      *outDir,
		loadPolicy:  projmgr.LoadPacksPolicy(*loadPolicy),
		dryRun:      *dryRun,
	}, log))
}

type cliOptions struct {
	contextGlob string
	toolchain   string
	outDir      string
	loadPolicy  projmgr.LoadPacksPolicy
	dryRun      bool
}

// run wires Env, the pack registry, and the per-context pipeline that
// scenarios_test.go also exercises directly. It returns the process
// exit code (spec.md §6: "Exit code 0 on success; non-zero on any error
// recorded by the logger").
func run(solutionPath string, opts cliOptions, log logrus.FieldLogger) int {
	env := projmgr.LoadEnv()
	ws := projmgr.NewWorkspace(env, log)

	var solution projmgr.Csolution
	raw, err := os.ReadFile(solutionPath)
	if err != nil {
		log.WithError(err).Error("reading solution file")
		return 1
	}
	if _, err := yamlio.Load(solutionPath, raw, &solution); err != nil {
		log.WithError(err).Error("parsing solution file")
		return 1
	}
	if errs := yamlio.CheckPortablePaths(&solution); len(errs) > 0 {
		for _, e := range errs {
			ws.Diags.Errorf(projmgr.KindPortability, "", "%v", e)
		}
	}

	reg := registry.New(env, stubPdscParser{}, log)
	if err := reg.Discover(); err != nil {
		log.WithError(err).Error("pack discovery failed")
		return 1
	}
	packs, err := reg.LoadAll(opts.loadPolicy, solution.Packs)
	if err != nil {
		log.WithError(err).Error("loading packs")
		return 1
	}
	for _, p := range packs {
		ws.RecordPackPath(p.ID, p.Path)
	}

	model := rte.NewModel(packs)
	evaluator := rte.NewEvaluator(model)

	var projects []ctxbuild.ProjectSpec
	for _, p := range solution.Projects {
		projects = append(projects, ctxbuild.ProjectSpec{Name: p.Project, ForContext: p.ForContext, NotForContext: p.NotForContext})
	}
	var buildTypes, targetTypes []string
	for _, bt := range solution.BuildTypes {
		buildTypes = append(buildTypes, bt.Type)
	}
	for _, tt := range solution.TargetTypes {
		targetTypes = append(targetTypes, tt.Type)
	}
	names := ctxbuild.Build(projects, buildTypes, targetTypes, solution.TypeFilter)

	solutionDir, _ := filepath.Abs(filepath.Dir(solutionPath))

	for _, name := range names {
		if opts.contextGlob != "" && !ctxbuild.MatchesFilter(opts.contextGlob, name.Build, name.Target) {
			continue
		}
		ctx := projmgr.NewContext(name)
		ws.AddContext(ctx)

		target := projmgr.TargetFilter{Device: ctx.Device, Pname: ctx.Pname}
		if opts.toolchain != "" {
			ctx.Toolchain.Name, _, _ = resolve.ParseCompilerSpec(opts.toolchain)
		}

		components.Apply(model, target, nil, ctx, nil, ws.Diags)
		evaluator.Solve(ctx, target)
	}

	if opts.dryRun {
		log.Info("dry run: no artefacts written")
		return exitCode(ws.Diags)
	}

	for _, ctx := range ws.Contexts {
		doc := emit.BuildCbuildDoc(ctx)
		path := filepath.Join(opts.outDir, ctx.Name.String()+".cbuild.yml")
		if _, err := emit.WriteIfChanged(os.ReadFile, writeFile, path, doc); err != nil {
			ws.Diags.Errorf(projmgr.KindIO, ctx.Name.String(), "writing %s: %v", path, err)
		}
	}
	idx := emit.BuildCbuildIdxDoc(filepath.Base(solutionPath), ws.Contexts, ws.Diags, func(n projmgr.ContextName) string { return n.String() + ".cbuild.yml" })
	idxPath := filepath.Join(opts.outDir, "cbuild-idx.yml")
	if _, err := emit.WriteIfChanged(os.ReadFile, writeFile, idxPath, idx); err != nil {
		ws.Diags.Errorf(projmgr.KindIO, "", "writing %s: %v", idxPath, err)
	}

	return exitCode(ws.Diags)
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func exitCode(diags *projmgr.Diagnostics) int {
	for _, d := range diags.All() {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if diags.HasErrors() {
		return 1
	}
	return 0
}

// stubPdscParser satisfies registry.PdscParser. Parsing the CMSIS pdsc
// XML grammar is explicitly out of scope for this module (spec.md §1:
// "read via the external model library") — a host embedding projmgr
// supplies a real implementation; this stub only lets the CLI binary
// link and fail loudly if a pdsc is actually encountered without one.
type stubPdscParser struct{}

func (stubPdscParser) Parse(path string) (*projmgr.Pack, error) {
	return nil, fmt.Errorf("pdsc parsing is not wired into this binary: %s (supply a registry.PdscParser)", path)
}
