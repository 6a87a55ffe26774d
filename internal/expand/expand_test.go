package expand

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

type fakeResolver struct {
	contexts map[string]*projmgr.Context
	packs    map[string]string
}

func (f *fakeResolver) EnsureProcessed(name projmgr.ContextName) (*projmgr.Context, error) {
	ctx, ok := f.contexts[name.String()]
	if !ok {
		return nil, &projmgr.PortabilityError{Key: name.String()}
	}
	return ctx, nil
}

func (f *fakeResolver) PackPath(spec string) (string, bool) {
	p, ok := f.packs[spec]
	return p, ok
}

func newCtx(name projmgr.ContextName) *projmgr.Context {
	return projmgr.NewContext(name)
}

func TestExpandStaticVariables(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky", Build: "Debug", Target: "Board"})
	ctx.Toolchain = projmgr.Toolchain{Name: "GCC"}
	res := &fakeResolver{}
	e := New(res, "/work")

	got, _, err := e.Expand(ctx, "$Project$-$BuildType$-$Compiler$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "Blinky-Debug-GCC" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandSolutionDirAndProjectDir(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky"})
	e := New(&fakeResolver{}, "/work")

	got, _, err := e.Expand(ctx, "$SolutionDir()$/$ProjectDir()$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "/work//work/Blinky" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandResolvesUserVariable(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky"})
	ctx.Variables["MyVar"] = "custom-value"
	e := New(&fakeResolver{}, "/work")

	got, _, err := e.Expand(ctx, "$MyVar$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "custom-value" {
		t.Fatalf("Expand = %q", got)
	}
}

func TestExpandUndefinedSequenceIsCollected(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky"})
	e := New(&fakeResolver{}, "/work")

	got, _, err := e.Expand(ctx, "$SomeUnknownVar$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "$SomeUnknownVar$" {
		t.Fatalf("Expand left unresolved sequence as %q", got)
	}
	undef := e.Undefined()
	if len(undef) != 1 || undef[0] != "SomeUnknownVar" {
		t.Fatalf("Undefined() = %v, want [SomeUnknownVar]", undef)
	}
}

func TestExpandOutDirRecursesIntoOtherContext(t *testing.T) {
	other := newCtx(projmgr.ContextName{Project: "Blinky", Build: "Release"})
	other.Dirs.OutDir = "/work/out/Release"

	self := newCtx(projmgr.ContextName{Project: "Blinky", Build: "Debug"})
	self.Dirs.OutDir = "/work/out/Debug"

	res := &fakeResolver{contexts: map[string]*projmgr.Context{
		"Blinky.Release": other,
	}}
	e := New(res, "/work")

	got, deps, err := e.Expand(self, "$OutDir(Release)$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(deps) != 1 || deps[0].Build != "Release" {
		t.Fatalf("deps = %v, want [Blinky.Release]", deps)
	}
	if got == "" {
		t.Fatal("expected a non-empty resolved OutDir")
	}
}

func TestExpandElfSequenceReadsOutputsMap(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky"})
	ctx.Outputs[projmgr.OutputELF] = "Blinky.elf"
	e := New(&fakeResolver{}, "/work")

	got, _, err := e.Expand(ctx, "$Elf()$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "Blinky.elf" {
		t.Fatalf("Expand = %q, want Blinky.elf", got)
	}
}

func TestExpandPackSequenceResolvesPath(t *testing.T) {
	ctx := newCtx(projmgr.ContextName{Project: "Blinky"})
	res := &fakeResolver{packs: map[string]string{"Keil::STM32F4xx_DFP": "/packs/Keil/STM32F4xx_DFP/2.0.0"}}
	e := New(res, "/work")

	got, _, err := e.Expand(ctx, "$Pack(Keil::STM32F4xx_DFP)$", "/work/Blinky")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "/packs/Keil/STM32F4xx_DFP/2.0.0" {
		t.Fatalf("Expand = %q", got)
	}
}

// recursingResolver re-enters the same Expander mid-Expand, so that
// EnsureProcessed(A) triggers Expand(B) which in turn needs
// EnsureProcessed(A) again - a genuine cycle through the shared
// in-progress guard rather than a single flat call.
type recursingResolver struct {
	e        *Expander
	a, b     *projmgr.Context
	aName    projmgr.ContextName
	bName    projmgr.ContextName
}

func (r *recursingResolver) EnsureProcessed(name projmgr.ContextName) (*projmgr.Context, error) {
	switch name.String() {
	case r.aName.String():
		if _, _, err := r.e.Expand(r.a, "$OutDir(Debug2)$", "/work/Blinky"); err != nil {
			return nil, err
		}
		return r.a, nil
	case r.bName.String():
		if _, _, err := r.e.Expand(r.b, "$OutDir(Debug)$", "/work/Blinky"); err != nil {
			return nil, err
		}
		return r.b, nil
	}
	return nil, &projmgr.PortabilityError{Key: name.String()}
}

func (r *recursingResolver) PackPath(string) (string, bool) { return "", false }

func TestExpandCyclicReferenceIsAnError(t *testing.T) {
	aName := projmgr.ContextName{Project: "Blinky", Build: "Debug"}
	bName := projmgr.ContextName{Project: "Blinky", Build: "Debug2"}
	a := newCtx(aName)
	b := newCtx(bName)

	res := &recursingResolver{aName: aName, bName: bName, a: a, b: b}
	e := New(res, "/work")
	res.e = e

	_, _, err := e.Expand(b, "$OutDir(Debug)$", "/work/Blinky")
	if err == nil {
		t.Fatal("expected a cyclic access-sequence error")
	}
}
