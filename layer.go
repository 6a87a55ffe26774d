package projmgr

// ConnectValue holds either a string or an integer connection value
// (spec.md §3: "provides/consumes a pair of named keys to string or
// integer values").
type ConnectValue struct {
	IsInt  bool
	Str    string
	Int    int
	// Add marks a "+N" consumption form (spec.md §4.7 overflow check).
	Add bool
}

// ConnectPair is one named key/value entry within a connection's
// provides or consumes list.
type ConnectPair struct {
	Key   string
	Value ConnectValue
}

// Connection is a provides/consumes/set tuple carried by a layer or a
// project's own `connections:` (spec.md §3, §4.7).
type Connection struct {
	ID        string
	Set       string // "config-id.selector" form; prefix before first '.' groups connections
	Provides  []ConnectPair
	Consumes  []ConnectPair
	// InProject is true when this connection lives directly in a
	// *.cproject.yml rather than in a candidate clayer (spec.md §4.7
	// step 6a: such connections are always active).
	InProject bool
	// Layer is the originating layer's path/id, empty for InProject
	// connections.
	Layer string
}

// ConfigID returns the text before the first '.' of Set, used to group
// connections within a layer for the select-combination step (spec.md
// §4.7 step 4).
func (c Connection) ConfigID() string {
	for i, r := range c.Set {
		if r == '.' {
			return c.Set[:i]
		}
	}
	return c.Set
}

// Layer is a reusable clayer fragment (spec.md §3).
type Layer struct {
	Path        string
	Type        string
	ForBoard    *DeviceRef // board filter, reinterpreted loosely
	ForDevice   *DeviceRef
	Connections []Connection
	Components  []ComponentRequest
	Pack        PackID // empty if discovered from filesystem rather than a pack
}

// LayerCombination is one valid subset of candidate layers plus the
// project's own connections, after §4.7 validation succeeds.
type LayerCombination struct {
	Layers      []string // layer paths/ids participating
	Active      []Connection
	SetSelectors map[string][]string // layer path -> distinct `set` selectors used
}

// ConnectionValidation is the result of validating one candidate active
// set (spec.md §4.7 step 7, and the §8 round-trip property).
type ConnectionValidation struct {
	Valid            bool
	Conflicts        map[string][]string // key -> contributing layers
	Overflows        map[string]string   // key -> "consumed > provided" message
	Incompatibles    map[string]string   // key -> reason
	MissedCollections []string          // orphaned provides-only layers (non-project)
}
