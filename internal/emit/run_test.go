package emit

import (
	"testing"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

func TestBuildCbuildSetDocPreservesOrderAndLastCompiler(t *testing.T) {
	set := projmgr.CbuildSet{Contexts: []projmgr.CbuildSetEntry{
		{Context: "Blinky.Debug+Board"},
		{Context: "Blinky.Release+Board", Compiler: "GCC"},
	}}
	doc := BuildCbuildSetDoc(set)
	if len(doc.Contexts) != 2 || doc.Contexts[0] != "Blinky.Debug+Board" {
		t.Fatalf("Contexts = %v", doc.Contexts)
	}
	if doc.Compiler != "GCC" {
		t.Fatalf("Compiler = %q, want GCC", doc.Compiler)
	}
}

func TestBuildCbuildRunDocEmptyWithoutDevice(t *testing.T) {
	ctx := projmgr.NewContext(projmgr.ContextName{Project: "Blinky"})
	doc := BuildCbuildRunDoc(ctx)
	if doc.Device != "" || len(doc.Algorithms) != 0 {
		t.Fatalf("BuildCbuildRunDoc without a device = %+v, want zero value", doc)
	}
}

func TestBuildCbuildRunDocProjectsDeviceDebugInfo(t *testing.T) {
	ctx := projmgr.NewContext(projmgr.ContextName{Project: "Blinky"})
	ctx.Device = &projmgr.Device{
		Name:       "STM32F407VG",
		Memories:   []projmgr.Memory{{Name: "IROM1", Start: 0x08000000, Size: 0x100000}},
		Algorithms: []projmgr.FlashAlgorithm{{Name: "STM32F4xx_1024.FLM"}},
		Debug:      projmgr.DebugConfig{Debugger: "CMSIS-DAP", DebugSequences: []string{"ResetSystem"}},
	}
	doc := BuildCbuildRunDoc(ctx)
	if doc.Device != "STM32F407VG" {
		t.Fatalf("Device = %q", doc.Device)
	}
	if len(doc.Memories) != 1 || len(doc.Algorithms) != 1 {
		t.Fatalf("Memories/Algorithms not projected: %+v", doc)
	}
	if doc.Debugger != "CMSIS-DAP" || len(doc.Sequences) != 1 {
		t.Fatalf("Debugger/Sequences not projected: %+v", doc)
	}
}
