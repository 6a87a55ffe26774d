package projmgr

import (
	goerrors "errors"
	"fmt"
	"sync"
)

// Diagnostics is the process-wide-per-invocation accumulator described in
// SPEC_FULL.md §7. It is always constructed explicitly and passed to
// collaborators; it is never a package-level global so that a Workspace
// can be instantiated more than once in the same process (parallel
// tests, a future RPC mode).
type Diagnostics struct {
	mu      sync.Mutex
	entries []Diagnostic
}

// NewDiagnostics returns an empty accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Add records a diagnostic. Context may be empty for solution-wide
// entries (e.g. schema failures, which abort the run per §7).
func (d *Diagnostics) Add(kind Kind, sev Severity, context, message string, cause error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, Diagnostic{
		Kind: kind, Severity: sev, Context: context, Message: message, Cause: cause,
	})
}

func (d *Diagnostics) Errorf(kind Kind, context, format string, args ...any) {
	d.Add(kind, SeverityError, context, fmt.Sprintf(format, args...), nil)
}

func (d *Diagnostics) Warnf(kind Kind, context, format string, args ...any) {
	d.Add(kind, SeverityWarning, context, fmt.Sprintf(format, args...), nil)
}

// All returns a copy of every recorded diagnostic, in recording order.
func (d *Diagnostics) All() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.entries))
	copy(out, d.entries)
	return out
}

// ForContext returns diagnostics scoped to one context name, plus any
// solution-wide (context == "") diagnostics.
func (d *Diagnostics) ForContext(name string) []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Diagnostic
	for _, e := range d.entries {
		if e.Context == "" || e.Context == name {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns every warning-severity diagnostic.
func (d *Diagnostics) Warnings() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Diagnostic
	for _, e := range d.entries {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err folds every error-severity diagnostic into one joined error, or
// nil if there were none. Warnings are never included.
func (d *Diagnostics) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for i := range d.entries {
		if d.entries[i].Severity == SeverityError {
			e := d.entries[i]
			errs = append(errs, &e)
		}
	}
	return goerrors.Join(errs...)
}
