// Package emit implements C10: the cbuild*.yml emitter. Each artefact
// is built as a plain Go value tree, marshalled with goccy/go-yaml for
// stable key ordering, then compared byte-equivalent (after line-ending
// normalization) against any existing file before writing, a stat plus
// content check per artefact rather than a whole-directory transaction,
// since cbuild artefacts are independent files with no cross-file
// atomicity requirement.
package emit

import (
	"bytes"

	"github.com/goccy/go-yaml"
)

// Reader/Writer are injected so WriteIfChanged stays testable without
// real filesystem access.
type Reader func(path string) ([]byte, error)
type Writer func(path string, data []byte) error

// Render marshals v with stable (sorted) map keys via goccy/go-yaml.
func Render(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

// WriteIfChanged renders v and writes it to path only if the rendered
// bytes differ (after line-ending normalization) from what is already
// on disk (spec.md §4.10: "If equal, the file is left untouched;
// otherwise it is rewritten and the user is informed"). It reports
// whether a write actually occurred.
func WriteIfChanged(read Reader, write Writer, path string, v interface{}) (changed bool, err error) {
	rendered, err := Render(v)
	if err != nil {
		return false, err
	}
	rendered = normalizeNewlines(rendered)

	existing, readErr := read(path)
	if readErr == nil && bytes.Equal(normalizeNewlines(existing), rendered) {
		return false, nil
	}

	if err := write(path, rendered); err != nil {
		return false, err
	}
	return true, nil
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// RebuildFlag reports whether a semantically meaningful change occurred
// between the old and new rendering of a subset of fields a caller
// considers "rebuild-significant" (spec.md §4.10: "compiler choice in
// cbuild.yml; set of child cbuilds in cbuild-idx.yml"). Callers pass
// pre-extracted comparable values rather than whole documents so the
// check stays independent of unrelated formatting/ordering churn.
func RebuildFlag(oldSignificant, newSignificant interface{}) (bool, error) {
	oldBytes, err := Render(oldSignificant)
	if err != nil {
		return true, err
	}
	newBytes, err := Render(newSignificant)
	if err != nil {
		return true, err
	}
	return !bytes.Equal(oldBytes, newBytes), nil
}
