package emit

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

func TestBuildCbuildDocProjectsSelectedComponentsSorted(t *testing.T) {
	ctx := projmgr.NewContext(projmgr.ContextName{Project: "Blinky", Build: "Debug"})
	ctx.Toolchain = projmgr.Toolchain{Name: "GCC"}
	ctx.SelectedComponents = []projmgr.SelectedComponent{
		{Component: projmgr.Component{ID: projmgr.ComponentID{Cclass: "CMSIS", Cgroup: "Core"}, Pack: projmgr.PackID{Vendor: "ARM", Name: "CMSIS", Version: "5.9.0"}}},
		{Component: projmgr.Component{ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Startup"}, Pack: projmgr.PackID{Vendor: "Keil", Name: "STM32F4xx_DFP", Version: "2.0.0"}}},
	}

	doc := BuildCbuildDoc(ctx)
	if doc.Context != "Blinky.Debug" {
		t.Fatalf("Context = %q", doc.Context)
	}
	if doc.Compiler != "GCC" {
		t.Fatalf("Compiler = %q", doc.Compiler)
	}
	if len(doc.Components) != 2 {
		t.Fatalf("Components = %d, want 2", len(doc.Components))
	}
	if doc.Components[0].Component > doc.Components[1].Component {
		t.Fatalf("Components not sorted: %v", doc.Components)
	}
	if len(doc.Packs) != 2 {
		t.Fatalf("Packs = %d, want 2 distinct contributing packs", len(doc.Packs))
	}
}

func TestBuildCbuildIdxDocPreservesContextOrderAndSplitsDiagnostics(t *testing.T) {
	a := projmgr.NewContext(projmgr.ContextName{Project: "Blinky", Build: "Debug"})
	b := projmgr.NewContext(projmgr.ContextName{Project: "Blinky", Build: "Release"})
	diags := projmgr.NewDiagnostics()
	diags.Errorf(projmgr.KindDependency, "Blinky.Debug", "boom")
	diags.Warnf(projmgr.KindDependency, "Blinky.Release", "careful")

	doc := BuildCbuildIdxDoc("Blinky", []*projmgr.Context{a, b}, diags, func(n projmgr.ContextName) string {
		return n.String() + ".cbuild.yml"
	})
	if len(doc.Contexts) != 2 || doc.Contexts[0].Context != "Blinky.Debug" || doc.Contexts[1].Context != "Blinky.Release" {
		t.Fatalf("Contexts = %+v, want order preserved", doc.Contexts)
	}
	if len(doc.Contexts[0].Errors) != 1 {
		t.Fatalf("Contexts[0].Errors = %v, want 1", doc.Contexts[0].Errors)
	}
	if len(doc.Contexts[1].Warnings) != 1 {
		t.Fatalf("Contexts[1].Warnings = %v, want 1", doc.Contexts[1].Warnings)
	}
}
