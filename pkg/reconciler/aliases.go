package reconciler

import (
	"fmt"
	"sort"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Alias maps a superseded id to the canonical id that replaced it.
type Alias struct {
	From        identity.ID   `json:"from" yaml:"from"`
	To          identity.ID   `json:"to" yaml:"to"`
	Kind        identity.Kind `json:"kind" yaml:"kind"`
	BusinessKey string        `json:"business_key" yaml:"business_key"`
	FromBatch   string        `json:"from_batch,omitempty" yaml:"from_batch,omitempty"`
	ToBatch     string        `json:"to_batch,omitempty" yaml:"to_batch,omitempty"`
}

// String returns a one-line description of the alias.
func (a Alias) String() string {
	return fmt.Sprintf("%s %q: %s -> %s", a.Kind, a.BusinessKey, a.From, a.To)
}

// AliasTable resolves superseded ids to canonical ids. Chains are followed,
// so A->B and B->C resolve A to C.
type AliasTable struct {
	entries map[identity.ID]Alias
}

// NewAliasTable returns a table seeded with the given aliases.
func NewAliasTable(aliases ...Alias) (*AliasTable, error) {
	t := &AliasTable{entries: make(map[identity.ID]Alias)}
	for _, a := range aliases {
		if err := t.Add(a); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add records an alias. Aliases never cross kinds, never point at
// themselves and never close a cycle.
func (t *AliasTable) Add(a Alias) error {
	if a.From == a.To {
		return errors.NewValidationError("alias", a.From.String(), "id cannot alias itself")
	}
	if !identity.KindCompatible(a.From, a.To) {
		return errors.NewValidationError("alias", a.From.String(),
			fmt.Sprintf("cannot alias %s to %s: kinds differ", a.From.Kind(), a.To.Kind()))
	}
	if to, _ := t.Resolve(a.To); to == a.From {
		return errors.NewValidationError("alias", a.From.String(),
			fmt.Sprintf("aliasing to %s would form a cycle", a.To))
	}
	if a.Kind == identity.KindUnknown {
		a.Kind = a.From.Kind()
	}
	t.entries[a.From] = a
	return nil
}

// Resolve follows the alias chain from id. It reports whether id was
// superseded; an id that was not is returned unchanged.
func (t *AliasTable) Resolve(id identity.ID) (identity.ID, bool) {
	if t == nil {
		return id, false
	}
	current := id
	for hops := 0; hops <= len(t.entries); hops++ {
		a, ok := t.entries[current]
		if !ok {
			return current, current != id
		}
		current = a.To
	}
	return current, current != id
}

// Superseded reports whether id has been replaced by another id.
func (t *AliasTable) Superseded(id identity.ID) bool {
	if t == nil {
		return false
	}
	_, ok := t.entries[id]
	return ok
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// List returns the aliases with chains flattened to their final target,
// ordered by superseded id.
func (t *AliasTable) List() []Alias {
	if t == nil {
		return nil
	}
	out := make([]Alias, 0, len(t.entries))
	for from, a := range t.entries {
		a.To, _ = t.Resolve(from)
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].From.String() < out[j].From.String()
	})
	return out
}
