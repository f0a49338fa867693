// Package differ compares a stored catalog snapshot with a reconciled
// target state and produces the changeset an apply run must write.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a record is absent from the store.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a stored record has different content.
	ChangeTypeUpdate ChangeType = "update"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`
	OldValue string     `json:"old" yaml:"old"`
	NewValue string     `json:"new" yaml:"new"`
	Type     ChangeType `json:"type" yaml:"type"`
}

// Update represents an update to an existing record.
type Update struct {
	ID       identity.ID     `json:"id" yaml:"id"`
	Key      string          `json:"business_key" yaml:"business_key"`
	Existing catalogs.Record `json:"-" yaml:"-"`
	New      catalogs.Record `json:"-" yaml:"-"`
	Changes  []FieldChange   `json:"changes" yaml:"changes"`
}

// KindChangeset represents changes to the records of one kind.
type KindChangeset struct {
	Kind      identity.Kind     `json:"kind" yaml:"kind"`
	Added     []catalogs.Record `json:"-" yaml:"-"`
	Updated   []Update          `json:"updated" yaml:"updated"`
	Unchanged int               `json:"unchanged" yaml:"unchanged"`
}

// HasChanges returns true if the kind has records to write.
func (k *KindChangeset) HasChanges() bool {
	return len(k.Added) > 0 || len(k.Updated) > 0
}

// Writes returns the records that must be upserted: additions first, then
// updates, each in id order.
func (k *KindChangeset) Writes() []catalogs.Record {
	out := make([]catalogs.Record, 0, len(k.Added)+len(k.Updated))
	out = append(out, k.Added...)
	for _, u := range k.Updated {
		out = append(out, u.New)
	}
	return out
}

// Changeset represents all changes between a snapshot and a target state.
type Changeset struct {
	Kinds   []*KindChangeset // In write order
	Summary ChangesetSummary // Summary statistics
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Added        int `json:"added" yaml:"added"`
	Updated      int `json:"updated" yaml:"updated"`
	Unchanged    int `json:"unchanged" yaml:"unchanged"`
	TotalChanges int `json:"total_changes" yaml:"total_changes"`
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// Kind returns the changeset of one kind, or an empty one.
func (c *Changeset) Kind(kind identity.Kind) *KindChangeset {
	for _, k := range c.Kinds {
		if k.Kind == kind {
			return k
		}
	}
	return &KindChangeset{Kind: kind}
}

// calculateSummary computes the summary for a changeset.
func calculateSummary(kinds []*KindChangeset) ChangesetSummary {
	var s ChangesetSummary
	for _, k := range kinds {
		s.Added += len(k.Added)
		s.Updated += len(k.Updated)
		s.Unchanged += k.Unchanged
	}
	s.TotalChanges = s.Added + s.Updated
	return s
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	for _, k := range c.Kinds {
		if !k.HasChanges() {
			continue
		}
		kindParts := []string{}
		if len(k.Added) > 0 {
			kindParts = append(kindParts, fmt.Sprintf("%d added", len(k.Added)))
		}
		if len(k.Updated) > 0 {
			kindParts = append(kindParts, fmt.Sprintf("%d updated", len(k.Updated)))
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k.Kind, strings.Join(kindParts, ", ")))
	}

	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, "; "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, k := range c.Kinds {
		if k.HasChanges() {
			k.Print(w)
		}
	}
}

// Print writes the changes of one kind in a human-readable format.
func (k *KindChangeset) Print(w io.Writer) {
	if len(k.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added %s (%d):\n", k.Kind, len(k.Added))
		for _, r := range k.Added {
			fmt.Fprintf(w, "  • %s (%s)\n", r.RecordID(), r.BusinessKey())
		}
	}

	if len(k.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated %s (%d):\n", k.Kind, len(k.Updated))
		for _, update := range k.Updated {
			fmt.Fprintf(w, "  • %s (%s):\n", update.ID, update.Key)
			for _, change := range update.Changes {
				fmt.Fprintf(w, "    - %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
			}
		}
	}
}
