// Package yamlio implements C3: the declarative YAML loaders for every
// solution/project/layer/cdefault/cbuild-set/cbuild-pack/debug-adapters
// file kind, plus the portable-path and schema checks from spec.md §4.3.
//
// Decoding uses goccy/go-yaml exclusively. Position tracking rides on
// goccy/go-yaml's ast/parser subpackages directly, so every loaded node
// can report (file, line, column).
package yamlio

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/pkg/errors"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

const parseModeIgnoreComments parser.Mode = 0

// File wraps a parsed AST plus its name, so PositionOf can resolve
// dotted/indexed YAML paths against it without the caller re-parsing.
type File struct {
	Name string
	AST  *ast.File
}

// Load reads a YAML file kind, normalizes line endings, validates UTF-8,
// and decodes it into out. It returns the source's parsed AST so callers
// can look up node positions with PositionOf.
func Load(path string, data []byte, out interface{}) (*File, error) {
	if !utf8.Valid(data) {
		return nil, &projmgr.Diagnostic{
			Kind: projmgr.KindInputParse, Severity: projmgr.SeverityError,
			Message: fmt.Sprintf("%s: not valid UTF-8", path),
		}
	}

	normalized := normalizeNewlines(data)

	parsed, err := parser.ParseBytes(normalized, parseModeIgnoreComments)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	if err := yaml.UnmarshalWithOptions(normalized, out, yaml.Strict()); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	return &File{Name: path, AST: parsed}, nil
}

// normalizeNewlines makes the loader \n/\r\n agnostic per spec.md §4.3.
func normalizeNewlines(data []byte) []byte {
	if !strings.Contains(string(data), "\r\n") {
		return data
	}
	return []byte(strings.ReplaceAll(string(data), "\r\n", "\n"))
}

// PositionOf looks up the (line, column) of a YAML path (e.g.
// "$.packs[0].pack") within a parsed file, for diagnostics. It returns
// a Position carrying just the file name if the path cannot be resolved
// (treated by callers as "position unknown", not an error).
func PositionOf(f *File, path string) projmgr.Position {
	if f == nil || f.AST == nil {
		return projmgr.Position{}
	}
	p, err := yaml.PathString(path)
	if err != nil {
		return projmgr.Position{File: f.Name}
	}
	node, err := p.FilterFile(f.AST)
	if err != nil || node == nil {
		return projmgr.Position{File: f.Name}
	}
	tok := node.GetToken()
	if tok == nil {
		return projmgr.Position{File: f.Name}
	}
	return projmgr.Position{File: f.Name, Line: tok.Position.Line, Column: tok.Position.Column}
}
