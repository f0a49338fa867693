package catalogs

import (
	"sort"
	"strconv"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Discipline tags the trade a WIR stage belongs to.
type Discipline string

// Disciplines.
const (
	DisciplineCivil      Discipline = "Civil"
	DisciplineElectrical Discipline = "Electrical"
	DisciplineMEP        Discipline = "MEP"
	DisciplineBoth       Discipline = "Both"
)

// Valid reports whether the discipline is one of the known tags.
func (d Discipline) Valid() bool {
	switch d {
	case DisciplineCivil, DisciplineElectrical, DisciplineMEP, DisciplineBoth:
		return true
	}
	return false
}

// String returns the discipline tag.
func (d Discipline) String() string {
	return string(d)
}

// Record is implemented by the four catalog entity kinds.
type Record interface {
	// RecordID returns the surrogate id.
	RecordID() identity.ID
	// Kind returns the entity kind.
	Kind() identity.Kind
	// BusinessKey returns the natural key used to detect that two ids
	// denote the same real-world record.
	BusinessKey() string
	// Created returns the creation timestamp.
	Created() time.Time
	// Fields returns the comparable content of the record, keyed by field
	// name. Ids and timestamps are not part of the content.
	Fields() map[string]string
}

// WIRMaster is a top-level inspection stage.
type WIRMaster struct {
	ID          identity.ID `json:"id" yaml:"id"`
	Code        string      `json:"code" yaml:"code" validate:"required,wircode"`
	Name        string      `json:"name" yaml:"name" validate:"notblank,max=256"`
	Description string      `json:"description" yaml:"description" validate:"notblank,max=4096"`
	Sequence    int         `json:"sequence" yaml:"sequence" validate:"gt=0"`
	Discipline  Discipline  `json:"discipline" yaml:"discipline" validate:"required,discipline"`
	Phase       string      `json:"phase,omitempty" yaml:"phase,omitempty" validate:"max=256"`
	Active      bool        `json:"active" yaml:"active"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at,omitempty"`
}

// RecordID implements Record.
func (w WIRMaster) RecordID() identity.ID { return w.ID }

// Kind implements Record.
func (w WIRMaster) Kind() identity.Kind { return identity.KindWIRMaster }

// BusinessKey implements Record.
func (w WIRMaster) BusinessKey() string { return NormalizeCode(w.Code) }

// Created implements Record.
func (w WIRMaster) Created() time.Time { return w.CreatedAt }

// Fields implements Record.
func (w WIRMaster) Fields() map[string]string {
	return map[string]string{
		"code":        w.Code,
		"name":        w.Name,
		"description": w.Description,
		"sequence":    strconv.Itoa(w.Sequence),
		"discipline":  w.Discipline.String(),
		"phase":       w.Phase,
		"active":      strconv.FormatBool(w.Active),
	}
}

// Category groups checklist items. WIR is the owning stage code; an empty
// WIR marks a cross-stage category.
type Category struct {
	ID        identity.ID `json:"id" yaml:"id"`
	WIR       string      `json:"wir,omitempty" yaml:"wir,omitempty" validate:"omitempty,wircode"`
	Name      string      `json:"name" yaml:"name" validate:"notblank,max=256"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at,omitempty"`
}

// RecordID implements Record.
func (c Category) RecordID() identity.ID { return c.ID }

// Kind implements Record.
func (c Category) Kind() identity.Kind { return identity.KindCategory }

// BusinessKey implements Record. The stage prefix some names carry is
// dropped so that "WIR-2: Leak Test" and "Leak Test" under WIR-2 match.
func (c Category) BusinessKey() string {
	return NormalizeCode(c.WIR) + "|" + NormalizeName(StripStagePrefix(c.Name))
}

// Created implements Record.
func (c Category) Created() time.Time { return c.CreatedAt }

// Fields implements Record.
func (c Category) Fields() map[string]string {
	return map[string]string{
		"wir":  c.WIR,
		"name": c.Name,
	}
}

// Reference is a citation or document type justifying a checklist item.
type Reference struct {
	ID        identity.ID `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name" validate:"notblank,max=256"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at,omitempty"`
}

// RecordID implements Record.
func (r Reference) RecordID() identity.ID { return r.ID }

// Kind implements Record.
func (r Reference) Kind() identity.Kind { return identity.KindReference }

// BusinessKey implements Record.
func (r Reference) BusinessKey() string { return NormalizeName(r.Name) }

// Created implements Record.
func (r Reference) Created() time.Time { return r.CreatedAt }

// Fields implements Record.
func (r Reference) Fields() map[string]string {
	return map[string]string{"name": r.Name}
}

// ChecklistItem is a single predefined inspection checkpoint.
type ChecklistItem struct {
	ID          identity.ID `json:"id" yaml:"id"`
	ItemNumber  string      `json:"item_number" yaml:"item_number" validate:"notblank,max=32"`
	WIR         string      `json:"wir" yaml:"wir" validate:"required,wircode"`
	Description string      `json:"description" yaml:"description" validate:"notblank,max=4096"`
	CategoryID  identity.ID `json:"category_id" yaml:"category_id"`
	ReferenceID identity.ID `json:"reference_id" yaml:"reference_id"`
	Sequence    int         `json:"sequence" yaml:"sequence" validate:"gt=0"`
	Active      bool        `json:"active" yaml:"active"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at,omitempty"`
}

// RecordID implements Record.
func (i ChecklistItem) RecordID() identity.ID { return i.ID }

// Kind implements Record.
func (i ChecklistItem) Kind() identity.Kind { return identity.KindChecklistItem }

// BusinessKey implements Record.
func (i ChecklistItem) BusinessKey() string {
	return NormalizeCode(i.WIR) + "|" + NormalizeCode(i.ItemNumber)
}

// Created implements Record.
func (i ChecklistItem) Created() time.Time { return i.CreatedAt }

// Fields implements Record.
func (i ChecklistItem) Fields() map[string]string {
	return map[string]string{
		"item_number":  i.ItemNumber,
		"wir":          i.WIR,
		"description":  i.Description,
		"category_id":  i.CategoryID.String(),
		"reference_id": i.ReferenceID.String(),
		"sequence":     strconv.Itoa(i.Sequence),
		"active":       strconv.FormatBool(i.Active),
	}
}

// SameID reports whether two records carry the same id.
func SameID(a, b Record) bool {
	return a.RecordID() == b.RecordID()
}

// SameContent reports whether two records of the same kind have equal
// content, ignoring ids and timestamps.
func SameContent(a, b Record) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	fa, fb := a.Fields(), b.Fields()
	if len(fa) != len(fb) {
		return false
	}
	for k, v := range fa {
		if fb[k] != v {
			return false
		}
	}
	return true
}

// ChangedFields returns the names of the fields whose values differ
// between two records, in sorted order.
func ChangedFields(from, to Record) []string {
	ff, tf := from.Fields(), to.Fields()
	var changed []string
	for k, v := range tf {
		if ff[k] != v {
			changed = append(changed, k)
		}
	}
	for k := range ff {
		if _, ok := tf[k]; !ok {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

// WithCreated returns a copy of r whose creation timestamp is set to t if
// it was zero.
func WithCreated(r Record, t time.Time) Record {
	if !r.Created().IsZero() {
		return r
	}
	switch v := r.(type) {
	case WIRMaster:
		v.CreatedAt = t
		return v
	case Category:
		v.CreatedAt = t
		return v
	case Reference:
		v.CreatedAt = t
		return v
	case ChecklistItem:
		v.CreatedAt = t
		return v
	}
	return r
}
