package resolve

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

func fakeReadDir(names []string) func(string) ([]string, error) {
	return func(string) ([]string, error) { return names, nil }
}

func TestParseCompilerSpec(t *testing.T) {
	cases := []struct {
		spec     string
		name     string
		wantOpen bool
	}{
		{spec: "GCC", name: "GCC"},
		{spec: "GCC@10.3.1", name: "GCC"},
		{spec: "GCC@>=10.0.0", name: "GCC", wantOpen: true},
	}
	for _, c := range cases {
		name, vr, err := ParseCompilerSpec(c.spec)
		if err != nil {
			t.Fatalf("ParseCompilerSpec(%q): %v", c.spec, err)
		}
		if name != c.name {
			t.Errorf("ParseCompilerSpec(%q) name = %q, want %q", c.spec, name, c.name)
		}
		if c.wantOpen && vr.Exact {
			t.Errorf("ParseCompilerSpec(%q) expected an open range, got exact", c.spec)
		}
	}
}

func TestToolchainRegistryResolvesHighestConfigInOpenRange(t *testing.T) {
	reg, err := NewToolchainRegistry(projmgr.Env{}, "etc", fakeReadDir([]string{
		"GCC.10.3.1.cmake", "GCC.12.2.0.cmake", "AC6.6.18.0.cmake",
	}))
	if err != nil {
		t.Fatalf("NewToolchainRegistry: %v", err)
	}

	tc, err := reg.Resolve("GCC@>=10.0.0")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.Version != "12.2.0" {
		t.Fatalf("resolved toolchain version = %q, want 12.2.0 (highest available)", tc.Version)
	}
}

func TestToolchainRegistryResolveNotFound(t *testing.T) {
	reg, err := NewToolchainRegistry(projmgr.Env{}, "etc", fakeReadDir(nil))
	if err != nil {
		t.Fatal(err)
	}
	_, err = reg.Resolve("IAR@9.0.0")
	if _, ok := err.(*projmgr.ToolchainNotFoundError); !ok {
		t.Fatalf("err = %T, want *projmgr.ToolchainNotFoundError", err)
	}
}

func TestToolchainRegistryFallsBackToEnvRoot(t *testing.T) {
	env := projmgr.Env{ToolchainVersions: map[string]map[string]string{
		"IAR": {"9.20.0": "/opt/iar-9.20"},
	}}
	reg, err := NewToolchainRegistry(env, "etc", fakeReadDir(nil))
	if err != nil {
		t.Fatal(err)
	}
	tc, err := reg.Resolve("IAR")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tc.Root != "/opt/iar-9.20" {
		t.Fatalf("Root = %q, want env-registered root", tc.Root)
	}
}
