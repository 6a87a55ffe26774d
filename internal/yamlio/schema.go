package yamlio

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	projmgr "github.com/open-cmsis-pack/projmgr-go"
)

// schemaFor lazily generates and caches a JSON Schema for T using
// invopop/jsonschema. Schema generation happens at load time rather
// than via a go:generate step, since validation against it is also
// done at load time when enabled: the external validator is out of
// this core's scope (spec.md §6), but the core still owns the toggle
// (`check-schema` / `--no-check-schema`, spec.md §4.3).
type schemaCache struct {
	mu     sync.Mutex
	byName map[string]*jsonschema.Schema
}

var schemas = &schemaCache{byName: make(map[string]*jsonschema.Schema)}

func schemaFor(name string, v interface{}) *jsonschema.Schema {
	schemas.mu.Lock()
	defer schemas.mu.Unlock()
	if s, ok := schemas.byName[name]; ok {
		return s
	}
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(v)
	schemas.byName[name] = s
	return s
}

// Validate checks decoded value v's required fields against its
// generated schema; a required field that is absent, null or an empty
// string is reported missing. It is a required-field check only, not a
// full external JSON-Schema validator (explicitly out of scope, spec.md
// §1/§6): field types are not checked here.
func Validate(name string, v interface{}) error {
	schema := schemaFor(name, v)
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshalling for schema validation")
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "unmarshalling for schema validation")
	}
	return validateRequired(name, schema.Required, doc)
}

func validateRequired(context string, required []string, doc map[string]interface{}) error {
	var missing []string
	for _, r := range required {
		v, ok := doc[r]
		if !ok || v == nil || v == "" {
			missing = append(missing, r)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &projmgr.Diagnostic{
		Kind: projmgr.KindInputParse, Severity: projmgr.SeverityError, Context: context,
		Message: "missing required field(s): " + joinStrings(missing),
	}
}

func joinStrings(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
