package mysql

import (
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

type wirMaster struct {
	ID          string `gorm:"primaryKey;size:36"`
	Code        string `gorm:"size:32;not null;index"`
	Name        string `gorm:"size:256;not null"`
	Description string `gorm:"type:text;not null"`
	Sequence    int    `gorm:"not null"`
	Discipline  string `gorm:"size:16;not null"`
	Phase       string `gorm:"size:256;not null;default:''"`
	Active      bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (wirMaster) TableName() string { return "wir_masters" }

type category struct {
	ID        string `gorm:"primaryKey;size:36"`
	WIR       string `gorm:"column:wir;size:32;not null;default:'';index"`
	Name      string `gorm:"size:256;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (category) TableName() string { return "categories" }

type reference struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:256;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (reference) TableName() string { return "references_" }

type checklistItem struct {
	ID          string `gorm:"primaryKey;size:36"`
	ItemNumber  string `gorm:"size:32;not null"`
	WIR         string `gorm:"column:wir;size:32;not null;index:idx_checklist_items_wir_sequence,priority:1"`
	Description string `gorm:"type:text;not null"`
	CategoryID  string `gorm:"size:36;not null;index"`
	ReferenceID string `gorm:"size:36;not null;index"`
	Sequence    int    `gorm:"not null;index:idx_checklist_items_wir_sequence,priority:2"`
	Active      bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (checklistItem) TableName() string { return "checklist_items" }

type supersededID struct {
	ID          string    `gorm:"primaryKey;size:36"`
	CanonicalID string    `gorm:"size:36;not null;index"`
	Kind        string    `gorm:"size:32;not null"`
	BusinessKey string    `gorm:"size:512;not null;default:''"`
	Batch       string    `gorm:"size:256;not null;default:''"`
	RecordedAt  time.Time `gorm:"not null"`
}

func (supersededID) TableName() string { return "superseded_ids" }

// allModels lists the tables AutoMigrate creates.
var allModels = []any{&wirMaster{}, &category{}, &reference{}, &checklistItem{}, &supersededID{}}

// contentColumns are overwritten on upsert. created_at is not among them.
var contentColumns = map[identity.Kind][]string{
	identity.KindWIRMaster:     {"code", "name", "description", "sequence", "discipline", "phase", "active", "updated_at"},
	identity.KindCategory:      {"wir", "name", "updated_at"},
	identity.KindReference:     {"name", "updated_at"},
	identity.KindChecklistItem: {"item_number", "wir", "description", "category_id", "reference_id", "sequence", "active", "updated_at"},
}

func toWIRMaster(w catalogs.WIRMaster) wirMaster {
	return wirMaster{
		ID:          w.ID.String(),
		Code:        w.Code,
		Name:        w.Name,
		Description: w.Description,
		Sequence:    w.Sequence,
		Discipline:  w.Discipline.String(),
		Phase:       w.Phase,
		Active:      w.Active,
		CreatedAt:   w.CreatedAt,
	}
}

func (m wirMaster) record() (catalogs.Record, error) {
	id, err := identity.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return catalogs.WIRMaster{
		ID:          id,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		Sequence:    m.Sequence,
		Discipline:  catalogs.Discipline(m.Discipline),
		Phase:       m.Phase,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt.UTC(),
	}, nil
}

func toCategory(c catalogs.Category) category {
	return category{ID: c.ID.String(), WIR: c.WIR, Name: c.Name, CreatedAt: c.CreatedAt}
}

func (m category) record() (catalogs.Record, error) {
	id, err := identity.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return catalogs.Category{ID: id, WIR: m.WIR, Name: m.Name, CreatedAt: m.CreatedAt.UTC()}, nil
}

func toReference(r catalogs.Reference) reference {
	return reference{ID: r.ID.String(), Name: r.Name, CreatedAt: r.CreatedAt}
}

func (m reference) record() (catalogs.Record, error) {
	id, err := identity.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	return catalogs.Reference{ID: id, Name: m.Name, CreatedAt: m.CreatedAt.UTC()}, nil
}

func toChecklistItem(i catalogs.ChecklistItem) checklistItem {
	return checklistItem{
		ID:          i.ID.String(),
		ItemNumber:  i.ItemNumber,
		WIR:         i.WIR,
		Description: i.Description,
		CategoryID:  i.CategoryID.String(),
		ReferenceID: i.ReferenceID.String(),
		Sequence:    i.Sequence,
		Active:      i.Active,
		CreatedAt:   i.CreatedAt,
	}
}

func (m checklistItem) record() (catalogs.Record, error) {
	id, err := identity.Parse(m.ID)
	if err != nil {
		return nil, err
	}
	categoryID, err := identity.Parse(m.CategoryID)
	if err != nil {
		return nil, err
	}
	referenceID, err := identity.Parse(m.ReferenceID)
	if err != nil {
		return nil, err
	}
	return catalogs.ChecklistItem{
		ID:          id,
		ItemNumber:  m.ItemNumber,
		WIR:         m.WIR,
		Description: m.Description,
		CategoryID:  categoryID,
		ReferenceID: referenceID,
		Sequence:    m.Sequence,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt.UTC(),
	}, nil
}

func toSupersededID(a store.AliasRecord) supersededID {
	return supersededID{
		ID:          a.From.String(),
		CanonicalID: a.To.String(),
		Kind:        a.Kind.String(),
		BusinessKey: a.BusinessKey,
		Batch:       a.Batch,
		RecordedAt:  a.RecordedAt,
	}
}

func (m supersededID) alias() (store.AliasRecord, error) {
	from, err := identity.Parse(m.ID)
	if err != nil {
		return store.AliasRecord{}, err
	}
	to, err := identity.Parse(m.CanonicalID)
	if err != nil {
		return store.AliasRecord{}, err
	}
	return store.AliasRecord{
		From:        from,
		To:          to,
		Kind:        identity.Kind(m.Kind),
		BusinessKey: m.BusinessKey,
		Batch:       m.Batch,
		RecordedAt:  m.RecordedAt.UTC(),
	}, nil
}
