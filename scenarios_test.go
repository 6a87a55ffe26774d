package projmgr_test

import (
	"testing"

	"github.com/Masterminds/semver"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
	"github.com/open-cmsis-pack/projmgr-go/internal/components"
	"github.com/open-cmsis-pack/projmgr-go/internal/ctxbuild"
	"github.com/open-cmsis-pack/projmgr-go/internal/emit"
	"github.com/open-cmsis-pack/projmgr-go/internal/expand"
	"github.com/open-cmsis-pack/projmgr-go/internal/layers"
	"github.com/open-cmsis-pack/projmgr-go/internal/plm"
)

func mustVersion(t *testing.T, s string) *semver.Version {
	t.Helper()
	v, err := semver.NewVersion(s)
	if err != nil {
		t.Fatalf("semver.NewVersion(%q): %v", s, err)
	}
	return v
}

// Scenario 1 (spec.md §8.1): a solution with build-types {Debug,Release},
// target-types {A,B} and one cproject with a for-context-filtered file
// produces four contexts, with the filtered file included only in the
// two that satisfy "+A".
func TestScenarioContextFiltering(t *testing.T) {
	projects := []ctxbuild.ProjectSpec{{Name: "Blinky"}}
	contexts := ctxbuild.Build(projects, []string{"Debug", "Release"}, []string{"A", "B"}, projmgr.TypeFilter{})
	if len(contexts) != 4 {
		t.Fatalf("Build produced %d contexts, want 4", len(contexts))
	}

	var forA int
	for _, c := range contexts {
		if ctxbuild.MatchesFilter("+A", c.Build, c.Target) {
			forA++
		}
	}
	if forA != 2 {
		t.Fatalf("%d contexts matched +A, want 2 (Blinky.Debug+A, Blinky.Release+A)", forA)
	}
}

// Scenario 2 (spec.md §8.2): two installed CMSIS versions, a solution
// requiring ">=5.5.0" under the default policy selects the highest
// (6.0.0), and the emitted pack list carries its selector as
// selected-by-pack history.
func TestScenarioVersionRangePackPick(t *testing.T) {
	vr, err := projmgr.ParseVersionRange(">=5.5.0")
	if err != nil {
		t.Fatalf("ParseVersionRange: %v", err)
	}
	installed := []*semver.Version{mustVersion(t, "5.9.0"), mustVersion(t, "6.0.0")}
	picked := projmgr.HighestMatching(installed, vr)
	if picked == nil || picked.String() != "6.0.0" {
		t.Fatalf("picked = %v, want 6.0.0", picked)
	}

	id := projmgr.PackID{Vendor: "ARM", Name: "CMSIS", Version: picked.String()}
	out := emit.BuildPackList(projmgr.CbuildPack{}, false, []projmgr.PackID{id}, map[projmgr.PackID][]string{
		id: {"ARM::CMSIS@>=5.5.0"},
	})
	if len(out.Packs) != 1 || out.Packs[0].Resolved != "ARM::CMSIS@6.0.0" {
		t.Fatalf("BuildPackList = %+v", out.Packs)
	}
	if len(out.Packs[0].SelectedBy) != 1 || out.Packs[0].SelectedBy[0] != "ARM::CMSIS@>=5.5.0" {
		t.Fatalf("SelectedBy = %v, want the requesting selector preserved", out.Packs[0].SelectedBy)
	}
}

// Scenario 3 (spec.md §8.3): two layers consume +3 and +2 of
// CMSIS_DEVICE_HCLK against a provider of 4; validation reports an
// overflow of "5 > 4".
func TestScenarioConnectionOverflow(t *testing.T) {
	active := []projmgr.Connection{
		{ID: "provider", Layer: "board.clayer.yml", Provides: []projmgr.ConnectPair{
			{Key: "CMSIS_DEVICE_HCLK", Value: projmgr.ConnectValue{IsInt: true, Int: 4}},
		}},
		{ID: "shield-a", Layer: "shieldA.clayer.yml", Consumes: []projmgr.ConnectPair{
			{Key: "CMSIS_DEVICE_HCLK", Value: projmgr.ConnectValue{IsInt: true, Int: 3, Add: true}},
		}},
		{ID: "shield-b", Layer: "shieldB.clayer.yml", Consumes: []projmgr.ConnectPair{
			{Key: "CMSIS_DEVICE_HCLK", Value: projmgr.ConnectValue{IsInt: true, Int: 2, Add: true}},
		}},
	}
	v := layers.Validate(active)
	if v.Valid {
		t.Fatal("expected validation to fail on overflow")
	}
	if v.Overflows["CMSIS_DEVICE_HCLK"] != "5 > 4" {
		t.Fatalf("Overflows[CMSIS_DEVICE_HCLK] = %q, want %q", v.Overflows["CMSIS_DEVICE_HCLK"], "5 > 4")
	}
}

type scenarioCatalog struct{ components map[string]projmgr.Component }

func (c scenarioCatalog) FilteredComponents(projmgr.TargetFilter, *projmgr.PackFilter) map[string]projmgr.Component {
	return c.components
}

// Scenario 4 (spec.md §8.4): a pack offers ARM::CMSIS:CORE with variants
// "default" (flagged IsDefault) and "custom"; requesting the bare
// aggregate id returns the default variant, recorded with its full id
// and selected-by trail.
func TestScenarioVariantDefault(t *testing.T) {
	cat := scenarioCatalog{components: map[string]projmgr.Component{
		"default": {ID: projmgr.ComponentID{Cvendor: "ARM", Cclass: "CMSIS", Cgroup: "CORE", Cvariant: "default"}, IsDefault: true},
		"custom":  {ID: projmgr.ComponentID{Cvendor: "ARM", Cclass: "CMSIS", Cgroup: "CORE", Cvariant: "custom"}},
	}}
	ctx := projmgr.NewContext(projmgr.ContextName{Project: "Blinky"})
	diags := projmgr.NewDiagnostics()

	components.Apply(cat, projmgr.TargetFilter{}, nil, ctx, []projmgr.ComponentRequest{
		{Component: "CMSIS:CORE"},
	}, diags)

	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.All())
	}
	if len(ctx.SelectedComponents) != 1 {
		t.Fatalf("SelectedComponents = %d, want 1", len(ctx.SelectedComponents))
	}
	sc := ctx.SelectedComponents[0]
	if sc.ID.Cvariant != "default" {
		t.Fatalf("selected variant = %q, want default", sc.ID.Cvariant)
	}
	if sc.SelectedBy != "CMSIS:CORE" {
		t.Fatalf("SelectedBy = %q, want the original request string", sc.SelectedBy)
	}
}

// Scenario 5 (spec.md §8.5): a deployed config file with base@1.0.0 on
// disk against a pack-offered update of 2.0.0 is a major bump - the PLM
// check reports "update required" as an error and never touches the
// file (Check is read-only; no Writer is even passed in).
func TestScenarioPLMUpdateRequired(t *testing.T) {
	names := []string{"system_ARMCM3.c", "system_ARMCM3.c.base@1.0.0"}
	list := func(string) ([]string, error) { return names, nil }
	diags := projmgr.NewDiagnostics()

	inst := plm.Check(list, "RTE/Device/ARMCM3/system_ARMCM3.c", "2.0.0", false, diags, "Blinky.Debug")
	if inst.Status != plm.StatusUpdateRequired {
		t.Fatalf("Status = %q, want %q", inst.Status, plm.StatusUpdateRequired)
	}
	if inst.Severity != projmgr.SeverityError {
		t.Fatalf("Severity = %v, want error", inst.Severity)
	}
	if !diags.HasErrors() {
		t.Fatal("expected an error diagnostic for a required update")
	}
}

type scenarioResolver struct {
	boot *projmgr.Context
}

func (r *scenarioResolver) EnsureProcessed(name projmgr.ContextName) (*projmgr.Context, error) {
	if name.Project == r.boot.Name.Project && name.Target == r.boot.Name.Target {
		return r.boot, nil
	}
	return nil, &projmgr.PortabilityError{Key: name.String()}
}

func (r *scenarioResolver) PackPath(string) (string, bool) { return "", false }

// Scenario 6 (spec.md §8.6): App+TZ references $Elf(Boot+TZ)$ - the
// expander resolves the Boot+TZ context's elf output, relative to
// App+TZ's own outdir, and reports Boot+TZ as a dependency. The context
// argument names another project explicitly via the "project.+target"
// form (parseContextArg inherits the caller's project absent a dot).
func TestScenarioAccessSequenceCrossContext(t *testing.T) {
	boot := projmgr.NewContext(projmgr.ContextName{Project: "Boot", Target: "TZ"})
	boot.Dirs.OutDir = "/work/out/BootTZ"
	boot.Outputs[projmgr.OutputELF] = "/work/out/BootTZ/Boot.elf"

	app := projmgr.NewContext(projmgr.ContextName{Project: "App", Target: "TZ"})
	app.Dirs.OutDir = "/work/out/AppTZ"

	res := &scenarioResolver{boot: boot}
	e := expand.New(res, "/work")

	got, deps, err := e.Expand(app, "$Elf(Boot.+TZ)$", "/work/App")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got == "" {
		t.Fatal("expected a non-empty resolved elf path")
	}
	if len(deps) != 1 || deps[0].Project != "Boot" || deps[0].Target != "TZ" {
		t.Fatalf("deps = %v, want [Boot+TZ]", deps)
	}

	for _, d := range deps {
		app.DependsOn = append(app.DependsOn, d)
	}
	if len(app.DependsOn) != 1 || app.DependsOn[0].String() != "Boot+TZ" {
		t.Fatalf("DependsOn = %v, want [Boot+TZ]", app.DependsOn)
	}
}

// A cycle between two contexts surfaces as a ReferenceError (spec.md
// §8.6 last sentence), exercised here through the same mutually
// recursive pattern as the expand package's own cycle test.
func TestScenarioAccessSequenceCycleIsReferenceError(t *testing.T) {
	aName := projmgr.ContextName{Project: "App", Target: "TZ"}
	bName := projmgr.ContextName{Project: "Boot", Target: "TZ"}
	a := projmgr.NewContext(aName)
	b := projmgr.NewContext(bName)

	var e *expand.Expander
	res := &cyclicPairResolver{aName: aName, bName: bName, a: a, b: b}
	e = expand.New(res, "/work")
	res.e = e

	_, _, err := e.Expand(a, "$OutDir(Boot.+TZ)$", "/work/App")
	if err == nil {
		t.Fatal("expected a cyclic reference error")
	}
	diag, ok := err.(*projmgr.Diagnostic)
	if !ok {
		t.Fatalf("err = %T, want *projmgr.Diagnostic", err)
	}
	if diag.Kind != projmgr.KindReference {
		t.Fatalf("Kind = %v, want KindReference", diag.Kind)
	}
}

type cyclicPairResolver struct {
	e     *expand.Expander
	a, b  *projmgr.Context
	aName projmgr.ContextName
	bName projmgr.ContextName
}

func (r *cyclicPairResolver) EnsureProcessed(name projmgr.ContextName) (*projmgr.Context, error) {
	switch name.String() {
	case r.aName.String():
		if _, _, err := r.e.Expand(r.a, "$OutDir(Boot.+TZ)$", "/work/App"); err != nil {
			return nil, err
		}
		return r.a, nil
	case r.bName.String():
		if _, _, err := r.e.Expand(r.b, "$OutDir(App.+TZ)$", "/work/Boot"); err != nil {
			return nil, err
		}
		return r.b, nil
	}
	return nil, &projmgr.PortabilityError{Key: name.String()}
}

func (r *cyclicPairResolver) PackPath(string) (string, bool) { return "", false }
