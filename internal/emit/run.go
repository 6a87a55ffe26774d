package emit

import projmgr "github.com/open-cmsis-pack/projmgr-go"

// CbuildSetDoc renders *.cbuild-set.yml: the persisted --context/
// --toolchain selection (spec.md §6).
type CbuildSetDoc struct {
	Contexts []string `yaml:"contexts,omitempty"`
	Compiler string   `yaml:"compiler,omitempty"`
}

// BuildCbuildSetDoc projects a projmgr.CbuildSet AST value into its
// rendered form, preserving source order (round-trip property, spec.md
// §8: "parsing cbuild-set.yml then re-emitting it yields identical
// YAML").
func BuildCbuildSetDoc(set projmgr.CbuildSet) CbuildSetDoc {
	doc := CbuildSetDoc{}
	for _, e := range set.Contexts {
		doc.Contexts = append(doc.Contexts, e.Context)
		if e.Compiler != "" {
			doc.Compiler = e.Compiler
		}
	}
	return doc
}

// CbuildRunDoc renders *+<target>.cbuild-run.yml: the run/debug payload
// (spec.md §6: "algorithms, memories, debuggers, debug sequences").
type CbuildRunDoc struct {
	Context    string                  `yaml:"context"`
	Device     string                  `yaml:"device,omitempty"`
	Algorithms []projmgr.FlashAlgorithm `yaml:"algorithm,omitempty"`
	Memories   []projmgr.Memory        `yaml:"memory,omitempty"`
	Debugger   string                  `yaml:"debugger,omitempty"`
	Sequences  []string                `yaml:"debug-sequences,omitempty"`
}

// BuildCbuildRunDoc assembles the run/debug payload for a processed
// context from its resolved device.
func BuildCbuildRunDoc(ctx *projmgr.Context) CbuildRunDoc {
	doc := CbuildRunDoc{Context: ctx.Name.String()}
	if ctx.Device == nil {
		return doc
	}
	doc.Device = ctx.Device.FullName()
	doc.Algorithms = ctx.Device.Algorithms
	doc.Memories = ctx.Device.Memories
	doc.Debugger = ctx.Device.Debug.Debugger
	doc.Sequences = ctx.Device.Debug.DebugSequences
	return doc
}
