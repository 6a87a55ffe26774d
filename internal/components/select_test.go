package components

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

type fakeCatalog struct{ components map[string]projmgr.Component }

func (f fakeCatalog) FilteredComponents(projmgr.TargetFilter, *projmgr.PackFilter) map[string]projmgr.Component {
	return f.components
}

func TestParseRequest(t *testing.T) {
	tokens, ver := ParseRequest("Device:Startup:RTE@1.2.3")
	if ver != "1.2.3" {
		t.Fatalf("version = %q, want 1.2.3", ver)
	}
	want := []string{"Device", "Startup", "RTE"}
	if len(tokens) != len(want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
}

func TestMatchRequestSelectsExactVariant(t *testing.T) {
	cat := fakeCatalog{components: map[string]projmgr.Component{
		"a": {ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Startup", Csub: "", Cvariant: "Generic"}},
		"b": {ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Startup", Csub: "", Cvariant: "Vendor"}},
	}}
	got, err := Match(cat, projmgr.TargetFilter{}, nil, projmgr.ComponentRequest{Component: "Device:Startup::Vendor"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.ID.Cvariant != "Vendor" {
		t.Fatalf("Match picked %+v, want the Vendor variant", got.ID)
	}
}

func TestMatchFallsBackToDefaultVariant(t *testing.T) {
	cat := fakeCatalog{components: map[string]projmgr.Component{
		"a": {ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Startup", Cvariant: "Generic"}, IsDefault: true},
		"b": {ID: projmgr.ComponentID{Cclass: "Device", Cgroup: "Startup", Cvariant: "Vendor"}},
	}}
	got, err := Match(cat, projmgr.TargetFilter{}, nil, projmgr.ComponentRequest{Component: "Device:Startup"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !got.IsDefault {
		t.Fatalf("Match picked %+v, want the default variant", got.ID)
	}
}

func TestMatchNotFound(t *testing.T) {
	cat := fakeCatalog{components: map[string]projmgr.Component{}}
	_, err := Match(cat, projmgr.TargetFilter{}, nil, projmgr.ComponentRequest{Component: "CMSIS:Core"})
	if err == nil {
		t.Fatal("expected an error for no matching component")
	}
}

func TestMatchHighestSemverBreaksRemainingTie(t *testing.T) {
	cat := fakeCatalog{components: map[string]projmgr.Component{
		"a": {ID: projmgr.ComponentID{Cclass: "CMSIS", Cgroup: "Core", Cversion: "5.1.0"}},
		"b": {ID: projmgr.ComponentID{Cclass: "CMSIS", Cgroup: "Core", Cversion: "5.6.0"}},
	}}
	got, err := Match(cat, projmgr.TargetFilter{}, nil, projmgr.ComponentRequest{Component: "CMSIS:Core"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got.ID.Cversion != "5.6.0" {
		t.Fatalf("Match picked version %q, want the highest 5.6.0", got.ID.Cversion)
	}
}
