package differ

import (
	"sort"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Differ handles change detection between a snapshot and a target state.
type Differ interface {
	// Records compares the stored and target records of one kind.
	Records(kind identity.Kind, existing, target []catalogs.Record) *KindChangeset

	// States compares a stored snapshot with a target state. Records
	// present only in the snapshot are not reported: apply never deletes.
	States(existing, target *catalogs.State) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Diff compares two states with a default Differ.
func Diff(existing, target *catalogs.State) *Changeset {
	return New().States(existing, target)
}

// States compares every kind in write order.
func (diff *differ) States(existing, target *catalogs.State) *Changeset {
	if existing == nil {
		existing = catalogs.NewState()
	}
	kinds := make([]*KindChangeset, 0, len(identity.Kinds()))
	for _, kind := range identity.Kinds() {
		kinds = append(kinds, diff.Records(kind, existing.Records(kind), target.Records(kind)))
	}
	return &Changeset{
		Kinds:   kinds,
		Summary: calculateSummary(kinds),
	}
}

// Records compares two sets of records and returns changes.
func (diff *differ) Records(kind identity.Kind, existing, target []catalogs.Record) *KindChangeset {
	changeset := &KindChangeset{
		Kind:    kind,
		Added:   []catalogs.Record{},
		Updated: []Update{},
	}

	// Create map for efficient lookup
	existingMap := make(map[identity.ID]catalogs.Record, len(existing))
	for _, r := range existing {
		existingMap[r.RecordID()] = r
	}

	ordered := append([]catalogs.Record(nil), target...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].RecordID().String() < ordered[j].RecordID().String()
	})

	for _, r := range ordered {
		stored, exists := existingMap[r.RecordID()]
		if !exists {
			changeset.Added = append(changeset.Added, r)
			continue
		}
		if changes := diff.fields(stored, r); len(changes) > 0 {
			changeset.Updated = append(changeset.Updated, Update{
				ID:       r.RecordID(),
				Key:      r.BusinessKey(),
				Existing: stored,
				New:      r,
				Changes:  changes,
			})
			continue
		}
		changeset.Unchanged++
	}

	return changeset
}

// fields compares the content of two records field by field.
func (diff *differ) fields(existing, updated catalogs.Record) []FieldChange {
	var changes []FieldChange
	for _, path := range catalogs.ChangedFields(existing, updated) {
		if diff.ignoreFields[path] {
			continue
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: existing.Fields()[path],
			NewValue: updated.Fields()[path],
			Type:     ChangeTypeUpdate,
		})
	}
	return changes
}
