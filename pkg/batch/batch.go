// Package batch loads seed batches: immutable, named collections of catalog
// records authored together as one generation.
//
// Batches are YAML files. A directory of batch files is ordered by the
// generation each file declares, oldest first, with the file name breaking
// ties. The reconciler gives later batches precedence.
package batch

import (
	"fmt"
	"sort"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Batch is one authoring generation of catalog records.
type Batch struct {
	Name        string    `json:"name" yaml:"name"`
	Generation  int       `json:"generation" yaml:"generation"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`

	WIRMasters []catalogs.WIRMaster     `json:"wir_masters,omitempty" yaml:"wir_masters,omitempty"`
	Categories []catalogs.Category      `json:"categories,omitempty" yaml:"categories,omitempty"`
	References []catalogs.Reference     `json:"references,omitempty" yaml:"references,omitempty"`
	Items      []catalogs.ChecklistItem `json:"checklist_items,omitempty" yaml:"checklist_items,omitempty"`

	// Source is the file the batch was read from, if any.
	Source string `json:"source,omitempty" yaml:"-"`
}

// Records returns every record of the batch in write order. Records with
// no creation timestamp inherit the batch's.
func (b *Batch) Records() []catalogs.Record {
	out := make([]catalogs.Record, 0, b.Len())
	for _, r := range b.WIRMasters {
		out = append(out, catalogs.WithCreated(r, b.CreatedAt))
	}
	for _, r := range b.Categories {
		out = append(out, catalogs.WithCreated(r, b.CreatedAt))
	}
	for _, r := range b.References {
		out = append(out, catalogs.WithCreated(r, b.CreatedAt))
	}
	for _, r := range b.Items {
		out = append(out, catalogs.WithCreated(r, b.CreatedAt))
	}
	return out
}

// Len returns the number of records in the batch.
func (b *Batch) Len() int {
	return len(b.WIRMasters) + len(b.Categories) + len(b.References) + len(b.Items)
}

// Counts returns the number of records per kind.
func (b *Batch) Counts() map[identity.Kind]int {
	return map[identity.Kind]int{
		identity.KindWIRMaster:     len(b.WIRMasters),
		identity.KindCategory:      len(b.Categories),
		identity.KindReference:     len(b.References),
		identity.KindChecklistItem: len(b.Items),
	}
}

// WIRCodes returns the normalized codes of the stages the batch declares.
func (b *Batch) WIRCodes() []string {
	codes := make([]string, 0, len(b.WIRMasters))
	for _, w := range b.WIRMasters {
		codes = append(codes, catalogs.NormalizeCode(w.Code))
	}
	return codes
}

// Validate checks every record with v and the identity contract within the
// batch: an id names one record and a business key is claimed by one id.
// All problems are returned together.
func (b *Batch) Validate(v *catalogs.Validator) error {
	var errs []error

	byID := make(map[identity.ID]catalogs.Record)
	byKey := make(map[string]catalogs.Record)
	stageSeq := make(map[int]string)

	for _, r := range b.Records() {
		if err := v.Validate(b.Name, r); err != nil {
			errs = append(errs, err)
			continue
		}

		kind := r.Kind().String()
		if prev, ok := byID[r.RecordID()]; ok {
			errs = append(errs, errors.NewMalformedRecordError(b.Name, kind, r.BusinessKey(),
				fmt.Sprintf("id %s is already used by %s %q", r.RecordID(), prev.Kind(), prev.BusinessKey())))
			continue
		}
		byID[r.RecordID()] = r

		key := kind + "/" + r.BusinessKey()
		if prev, ok := byKey[key]; ok {
			errs = append(errs, errors.NewMalformedRecordError(b.Name, kind, r.BusinessKey(),
				fmt.Sprintf("business key is declared by both %s and %s", prev.RecordID(), r.RecordID())))
			continue
		}
		byKey[key] = r

		if w, ok := r.(catalogs.WIRMaster); ok {
			if code, dup := stageSeq[w.Sequence]; dup {
				errs = append(errs, errors.NewMalformedRecordError(b.Name, kind, w.BusinessKey(),
					fmt.Sprintf("sequence %d is already used by %s", w.Sequence, code)))
				continue
			}
			stageSeq[w.Sequence] = w.BusinessKey()
		}
	}

	return errors.Join(errs...)
}

// Sort orders batches oldest generation first. Batches of the same
// generation are ordered by source file, then name.
func Sort(batches []*Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if a.Generation != b.Generation {
			return a.Generation < b.Generation
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Name < b.Name
	})
}

// Names returns the batch names in order.
func Names(batches []*Batch) []string {
	names := make([]string, len(batches))
	for i, b := range batches {
		names[i] = b.Name
	}
	return names
}
