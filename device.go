package projmgr

// ProcessorAttributes describes one Pname of a device (spec.md §3).
type ProcessorAttributes struct {
	Core      string
	FPU       string // "none" | "sp" | "dp"
	DSP       string // "no" | "yes"
	MVE       string // "no" | "fp" | "int"
	Endian    string // "little" | "big" | "configurable"
	TrustZone string // "no" | "secure" | "non-secure"
	PACBTI    string // "no" | "yes"
}

// Processor is one named core within a device.
type Processor struct {
	Pname string
	Attrs ProcessorAttributes
}

// Device is a node in the family → subfamily → device → variant
// hierarchy (spec.md §3). Variant is empty for devices with no
// sub-variants.
type Device struct {
	Vendor     string
	Family     string
	SubFamily  string
	Name       string
	Variant    string
	Processors []Processor
	Pack       PackID
	Memories   []Memory
	Algorithms []FlashAlgorithm
	Debug      DebugConfig
}

// FullName is the "name:variant" identity (just the name when Variant
// is empty) used for display and ambiguity reports.
func (d Device) FullName() string {
	name := d.Name
	if d.Variant != "" {
		name = d.Name + ":" + d.Variant
	}
	return name
}

// Memory describes one memory region of a device, consumed by the
// access-sequence expander and the cbuild-run emitter.
type Memory struct {
	Name       string
	Start      uint64
	Size       uint64
	Access     string // "rx", "rw", ...
	Default    bool
	Startup    bool
	Alias      string
}

// FlashAlgorithm is a debug/flash-programming algorithm reference.
type FlashAlgorithm struct {
	Name       string
	Start      uint64
	Size       uint64
	RAMStart   uint64
	RAMSize    uint64
	Default    bool
}

// DebugConfig carries the debugger/debug-sequence bindings emitted into
// *.cbuild-run.yml.
type DebugConfig struct {
	Debugger        string
	DebugSequences  []string
	DefaultResetSeq string
}

// Board references its mounted device(s) and the set of devices it is
// compatible with, but does not require (spec.md §3, §4.5).
type Board struct {
	Vendor       string
	Name         string
	Revision     string
	Pack         PackID
	Mounted      []DeviceRef
	Compatible   []DeviceRef
}

func (b Board) FullName() string {
	if b.Revision == "" {
		return b.Name
	}
	return b.Name + ":" + b.Revision
}

// DeviceRef is a lightweight pointer used by Board.Mounted/Compatible
// and by user device specs (spec.md §4.5 "vendor::name:pname").
type DeviceRef struct {
	Vendor string
	Name   string
	Pname  string
}
