package checker

import (
	"sort"

	"github.com/funvibe/implicits/internal/diagnostics"
	"github.com/funvibe/implicits/internal/resolution"
	"github.com/funvibe/implicits/internal/symbols"
)

// Binding is the recorded resolution of one required type.
type Binding struct {
	Key     string
	Param   *symbols.Param // Required parameter with call-site types applied
	Outcome resolution.Outcome
	Site    string // Callee of the call site that produced the binding
	Pos     diagnostics.Pos
}

// BindingTable holds one outcome per required type of a compilation unit.
// The first resolved outcome for a key wins. A failed outcome only holds
// its key until a later call site resolves the same type.
type BindingTable struct {
	entries map[string]Binding
}

func NewBindingTable() *BindingTable {
	return &BindingTable{entries: make(map[string]Binding)}
}

// Record stores b unless its key is already bound to a resolved outcome,
// or b failed and the key is already bound; it reports whether b was stored.
func (t *BindingTable) Record(b Binding) bool {
	if prev, exists := t.entries[b.Key]; exists {
		if prev.Outcome.Resolved() || !b.Outcome.Resolved() {
			return false
		}
	}
	t.entries[b.Key] = b
	return true
}

func (t *BindingTable) Lookup(key string) (Binding, bool) {
	b, ok := t.entries[key]
	return b, ok
}

// Keys returns the bound keys in sorted order.
func (t *BindingTable) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t *BindingTable) Len() int { return len(t.entries) }
