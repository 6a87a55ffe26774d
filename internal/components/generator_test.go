package components

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

func TestGpdscPath(t *testing.T) {
	got := GpdscPath("RTE/Device", projmgr.Generator{ID: "STM32CubeMX"})
	if got != "RTE/Device/STM32CubeMX.gpdsc" {
		t.Fatalf("GpdscPath = %q", got)
	}
}

func TestGeneratorForComponent(t *testing.T) {
	pack := &projmgr.Pack{Generators: []projmgr.Generator{{ID: "STM32CubeMX", Exe: "CubeMX.exe"}}}

	gen, ok := GeneratorForComponent(pack, projmgr.Component{Generator: "STM32CubeMX"})
	if !ok || gen.Exe != "CubeMX.exe" {
		t.Fatalf("GeneratorForComponent = %+v, %v", gen, ok)
	}

	_, ok = GeneratorForComponent(pack, projmgr.Component{})
	if ok {
		t.Fatal("expected no generator for a component with an empty Generator field")
	}
}

func TestMergeGeneratedReplacesBootstrapAndAddsNew(t *testing.T) {
	existing := []projmgr.SelectedComponent{
		{Component: projmgr.Component{ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Config"}}},
		{Component: projmgr.Component{ID: projmgr.ComponentID{Cclass: "CMSIS", Cgroup: "Core"}}},
	}
	generated := []projmgr.Component{
		{ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Config", Csub: "Pinout"}, Generator: "STM32CubeMX"},
		{ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Config", Csub: "Clock"}, Generator: "STM32CubeMX"},
	}

	bootstrapAgg := existing[0].ID.AggregateID()
	out := MergeGenerated(existing, bootstrapAgg, generated)
	if len(out) != 3 {
		t.Fatalf("MergeGenerated produced %d entries, want 3 (CMSIS:Core kept + 2 generated)", len(out))
	}
	for _, sc := range out {
		if sc.ID.AggregateID() == bootstrapAgg && sc.SelectedBy == "" {
			t.Fatalf("bootstrap entry should have been replaced, found stale entry %+v", sc)
		}
	}
}
