package catalogs

import (
	"fmt"
	"sort"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// State is a catalog keyed by id, one map per entity kind. The reconciler
// produces it and the seeder writes it.
type State struct {
	WIRMasters map[identity.ID]WIRMaster     `json:"wir_masters" yaml:"wir_masters"`
	Categories map[identity.ID]Category      `json:"categories" yaml:"categories"`
	References map[identity.ID]Reference     `json:"references" yaml:"references"`
	Items      map[identity.ID]ChecklistItem `json:"checklist_items" yaml:"checklist_items"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		WIRMasters: make(map[identity.ID]WIRMaster),
		Categories: make(map[identity.ID]Category),
		References: make(map[identity.ID]Reference),
		Items:      make(map[identity.ID]ChecklistItem),
	}
}

// Put stores a record, replacing any record with the same id.
func (s *State) Put(r Record) error {
	switch v := r.(type) {
	case WIRMaster:
		s.WIRMasters[v.ID] = v
	case Category:
		s.Categories[v.ID] = v
	case Reference:
		s.References[v.ID] = v
	case ChecklistItem:
		s.Items[v.ID] = v
	default:
		return fmt.Errorf("unsupported record type %T", r)
	}
	return nil
}

// Get returns the record with the given id, whatever its kind.
func (s *State) Get(id identity.ID) (Record, bool) {
	switch id.Kind() {
	case identity.KindWIRMaster:
		r, ok := s.WIRMasters[id]
		return r, ok
	case identity.KindCategory:
		r, ok := s.Categories[id]
		return r, ok
	case identity.KindReference:
		r, ok := s.References[id]
		return r, ok
	case identity.KindChecklistItem:
		r, ok := s.Items[id]
		return r, ok
	}
	return nil, false
}

// Has reports whether a record with the id exists.
func (s *State) Has(id identity.ID) bool {
	_, ok := s.Get(id)
	return ok
}

// Len returns the total number of records.
func (s *State) Len() int {
	return len(s.WIRMasters) + len(s.Categories) + len(s.References) + len(s.Items)
}

// Count returns the number of records of one kind.
func (s *State) Count(kind identity.Kind) int {
	switch kind {
	case identity.KindWIRMaster:
		return len(s.WIRMasters)
	case identity.KindCategory:
		return len(s.Categories)
	case identity.KindReference:
		return len(s.References)
	case identity.KindChecklistItem:
		return len(s.Items)
	}
	return 0
}

// Records returns the records of one kind ordered by id.
func (s *State) Records(kind identity.Kind) []Record {
	var out []Record
	switch kind {
	case identity.KindWIRMaster:
		for _, r := range s.WIRMasters {
			out = append(out, r)
		}
	case identity.KindCategory:
		for _, r := range s.Categories {
			out = append(out, r)
		}
	case identity.KindReference:
		for _, r := range s.References {
			out = append(out, r)
		}
	case identity.KindChecklistItem:
		for _, r := range s.Items {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordID().String() < out[j].RecordID().String()
	})
	return out
}

// All returns every record in write order: kinds in dependency order, ids
// ascending within a kind.
func (s *State) All() []Record {
	out := make([]Record, 0, s.Len())
	for _, kind := range identity.Kinds() {
		out = append(out, s.Records(kind)...)
	}
	return out
}

// IDs returns every id in the state.
func (s *State) IDs() []identity.ID {
	ids := make([]identity.ID, 0, s.Len())
	for _, r := range s.All() {
		ids = append(ids, r.RecordID())
	}
	return ids
}

// ListWIRMasters returns the stages ordered by sequence.
func (s *State) ListWIRMasters() []WIRMaster {
	out := make([]WIRMaster, 0, len(s.WIRMasters))
	for _, w := range s.WIRMasters {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// ListItems returns the checklist items of one stage ordered by sequence.
// An empty code returns every item ordered by stage then sequence.
func (s *State) ListItems(wir string) []ChecklistItem {
	var out []ChecklistItem
	code := NormalizeCode(wir)
	for _, i := range s.Items {
		if code == "" || NormalizeCode(i.WIR) == code {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		sa, _ := StageNumber(out[a].WIR)
		sb, _ := StageNumber(out[b].WIR)
		if sa != sb {
			return sa < sb
		}
		if out[a].Sequence != out[b].Sequence {
			return out[a].Sequence < out[b].Sequence
		}
		return out[a].ID.String() < out[b].ID.String()
	})
	return out
}

// WIRCodes returns the normalized codes of every stage in the state.
func (s *State) WIRCodes() []string {
	codes := make([]string, 0, len(s.WIRMasters))
	for _, w := range s.ListWIRMasters() {
		codes = append(codes, NormalizeCode(w.Code))
	}
	return codes
}

// Clone returns a copy that shares no maps with s.
func (s *State) Clone() *State {
	c := NewState()
	for _, r := range s.All() {
		_ = c.Put(r)
	}
	return c
}
