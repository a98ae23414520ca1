package placement

import (
	"github.com/hostbridge-dev/hostbridge-sdk/extension"
)

// Table is the authoritative mapping from extension identity to its
// current placement decision. It is rebuilt wholesale on every full
// catalog scan and read-only between rebuilds; incremental updates go
// through Rebase, which returns a new table rather than mutating.
type Table struct {
	decisions map[extension.Identity]Decision
}

// NewTable creates a table from an explicit decision map. The map is
// copied; identities resolved to None are kept so that lookups and
// filters stay total over the cycle's catalog.
func NewTable(decisions map[extension.Identity]Decision) *Table {
	d := make(map[extension.Identity]Decision, len(decisions))
	for id, dec := range decisions {
		d[id] = dec
	}
	return &Table{decisions: d}
}

// DecisionFor returns the decision for id, or None when the identity is
// not part of the current catalog.
func (t *Table) DecisionFor(id extension.Identity) Decision {
	return t.decisions[id]
}

// Filter returns the identities whose decision is exactly d, in
// lexicographic order.
func (t *Table) Filter(d Decision) []extension.Identity {
	set := extension.NewIdentitySet()
	for id, dec := range t.decisions {
		if dec == d {
			set.Union([]extension.Identity{id})
		}
	}
	return set.Sorted()
}

// Len returns the number of identities tracked this cycle.
func (t *Table) Len() int {
	return len(t.decisions)
}

// Rebase builds a new table from this one by applying the given decision
// updates and removals. The receiver is left untouched; the caller swaps
// the returned table in atomically.
func (t *Table) Rebase(updated map[extension.Identity]Decision, removed []extension.Identity) *Table {
	d := make(map[extension.Identity]Decision, len(t.decisions)+len(updated))
	for id, dec := range t.decisions {
		d[id] = dec
	}
	for _, id := range removed {
		delete(d, id)
	}
	for id, dec := range updated {
		d[id] = dec
	}
	return &Table{decisions: d}
}

// Equal reports whether two tables hold identical decisions.
func (t *Table) Equal(other *Table) bool {
	if len(t.decisions) != len(other.decisions) {
		return false
	}
	for id, dec := range t.decisions {
		o, ok := other.decisions[id]
		if !ok || o != dec {
			return false
		}
	}
	return true
}
