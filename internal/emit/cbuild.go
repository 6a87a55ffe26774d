package emit

import (
	"strings"

	"golang.org/x/exp/slices"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// ComponentRow is one rendered component entry within a context's
// cbuild.yml, carrying its PLM status alongside its identity and files
// (spec.md §4.10: "components with their files and PLM status").
type ComponentRow struct {
	Component    string                      `yaml:"component"`
	Condition    string                      `yaml:"condition,omitempty"`
	SelectedBy   string                      `yaml:"selected-by,omitempty"`
	Files        []string                    `yaml:"files,omitempty"`
	ConfigFiles  []projmgr.ConfigFileInstance `yaml:"config-files,omitempty"`
}

// CbuildDoc is the rendered <context>.cbuild.yml document (spec.md §6:
// "build plan for one context: compiler, device, packs, components
// with their files and PLM status, apis, generators, linker
// script/regions/defines, file groups, constructed preincludes").
type CbuildDoc struct {
	Context      string                  `yaml:"context"`
	Compiler     string                  `yaml:"compiler"`
	Device       string                  `yaml:"device,omitempty"`
	Board        string                  `yaml:"board,omitempty"`
	Packs        []string                `yaml:"packs,omitempty"`
	Components   []ComponentRow          `yaml:"components,omitempty"`
	Apis         []string                `yaml:"apis,omitempty"`
	Generators   []projmgr.GeneratorInvocation `yaml:"generators,omitempty"`
	LinkerInputs []string                `yaml:"linker,omitempty"`
	FileGroups   map[string][]string     `yaml:"groups,omitempty"`
	Outputs      map[string]string       `yaml:"output,omitempty"`
	DependsOn    []string                `yaml:"depends-on,omitempty"`
	RebuildPack  bool                    `yaml:"rebuild,omitempty"`
}

// BuildCbuildDoc projects a processed projmgr.Context into its rendered
// cbuild.yml shape.
func BuildCbuildDoc(ctx *projmgr.Context) CbuildDoc {
	doc := CbuildDoc{
		Context:      ctx.Name.String(),
		Compiler:     ctx.Toolchain.Name,
		LinkerInputs: ctx.LinkerInputs,
		Outputs:      map[string]string{},
		FileGroups:   map[string][]string{},
	}
	if ctx.Device != nil {
		doc.Device = ctx.Device.FullName()
	}
	if ctx.Board != nil {
		doc.Board = ctx.Board.FullName()
	}
	for kind, path := range ctx.Outputs {
		doc.Outputs[string(kind)] = path
	}
	for group, files := range ctx.FileGroups {
		for _, f := range files {
			doc.FileGroups[group] = append(doc.FileGroups[group], f.Path)
		}
		slices.Sort(doc.FileGroups[group])
	}

	packSet := map[string]bool{}
	for _, sc := range ctx.SelectedComponents {
		row := ComponentRow{Component: sc.ID.FullID(), Condition: sc.ConditionID, SelectedBy: sc.SelectedBy}
		for _, f := range sc.Files {
			row.Files = append(row.Files, f.Path)
		}
		doc.Components = append(doc.Components, row)
		packSet[sc.Pack.String()] = true
	}
	slices.SortFunc(doc.Components, func(a, b ComponentRow) int { return strings.Compare(a.Component, b.Component) })

	for _, api := range ctx.SelectedAPIs {
		doc.Apis = append(doc.Apis, api.ID.FullID())
		packSet[api.Pack.String()] = true
	}
	slices.Sort(doc.Apis)

	for p := range packSet {
		doc.Packs = append(doc.Packs, p)
	}
	slices.Sort(doc.Packs)

	doc.Generators = ctx.Generators

	for _, dep := range ctx.DependsOn {
		doc.DependsOn = append(doc.DependsOn, dep.String())
	}
	slices.Sort(doc.DependsOn)

	return doc
}

// CbuildIdxEntry is one context row within the solution-level index.
type CbuildIdxEntry struct {
	Context  string   `yaml:"context"`
	Cbuild   string   `yaml:"cbuild"`
	Errors   []string `yaml:"errors,omitempty"`
	Warnings []string `yaml:"warnings,omitempty"`
	Rebuild  bool     `yaml:"rebuild,omitempty"`
}

// CbuildIdxDoc is the rendered *.cbuild-idx.yml document (spec.md §6).
type CbuildIdxDoc struct {
	Solution string           `yaml:"solution"`
	Contexts []CbuildIdxEntry `yaml:"contexts,omitempty"`
}

// BuildCbuildIdxDoc assembles the solution-wide index, preserving
// context processing order (spec.md §5: "this same order is what
// cbuild-idx.yml reflects" — callers must pass contexts/diags already
// in collection order, not re-sort them here).
func BuildCbuildIdxDoc(solutionName string, contexts []*projmgr.Context, diags *projmgr.Diagnostics, cbuildPathOf func(projmgr.ContextName) string) CbuildIdxDoc {
	doc := CbuildIdxDoc{Solution: solutionName}
	for _, ctx := range contexts {
		entry := CbuildIdxEntry{Context: ctx.Name.String(), Cbuild: cbuildPathOf(ctx.Name)}
		for _, d := range diags.ForContext(ctx.Name.String()) {
			if d.Severity == projmgr.SeverityError {
				entry.Errors = append(entry.Errors, d.Message)
			} else {
				entry.Warnings = append(entry.Warnings, d.Message)
			}
		}
		doc.Contexts = append(doc.Contexts, entry)
	}
	return doc
}
