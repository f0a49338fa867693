// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/database"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// SeedDate is the created_at used by fixture batches.
var SeedDate = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

// NewTestDB returns an in-memory SQLite database configured the same way as
// production. The database is automatically closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// NewMigratedDB returns a test database with the catalog schema applied.
func NewMigratedDB(t *testing.T) *sql.DB {
	t.Helper()

	db := NewTestDB(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// WIR returns a WIR master for stage n.
func WIR(n int, name string) catalogs.WIRMaster {
	return catalogs.WIRMaster{
		ID:          identity.MustNew(identity.KindWIRMaster, 0, n),
		Code:        code(n),
		Name:        name,
		Description: name + " inspection",
		Sequence:    n,
		Discipline:  catalogs.DisciplineBoth,
		Active:      true,
	}
}

// Category returns a category in namespace ns of stage wir.
func Category(ns, seq int, wir, name string) catalogs.Category {
	return catalogs.Category{ID: identity.MustNew(identity.KindCategory, ns, seq), WIR: wir, Name: name}
}

// Reference returns a reference of generation gen.
func Reference(gen, seq int, name string) catalogs.Reference {
	return catalogs.Reference{ID: identity.MustNew(identity.KindReference, gen, seq), Name: name}
}

// Item returns an active checklist item.
func Item(ns, seq int, wir, number string, category, reference identity.ID) catalogs.ChecklistItem {
	return catalogs.ChecklistItem{
		ID:          identity.MustNew(identity.KindChecklistItem, ns, seq),
		ItemNumber:  number,
		WIR:         wir,
		Description: "Check " + number,
		CategoryID:  category,
		ReferenceID: reference,
		Sequence:    seq,
		Active:      true,
	}
}

// Builder assembles a batch for tests.
type Builder struct {
	b *batch.Batch
}

// NewBatch starts a batch with the given name and generation.
func NewBatch(name string, generation int) *Builder {
	return &Builder{b: &batch.Batch{Name: name, Generation: generation, CreatedAt: SeedDate, Source: name + ".yaml"}}
}

// WIRs adds WIR masters.
func (b *Builder) WIRs(ws ...catalogs.WIRMaster) *Builder {
	b.b.WIRMasters = append(b.b.WIRMasters, ws...)
	return b
}

// Categories adds categories.
func (b *Builder) Categories(cs ...catalogs.Category) *Builder {
	b.b.Categories = append(b.b.Categories, cs...)
	return b
}

// References adds references.
func (b *Builder) References(rs ...catalogs.Reference) *Builder {
	b.b.References = append(b.b.References, rs...)
	return b
}

// Items adds checklist items.
func (b *Builder) Items(is ...catalogs.ChecklistItem) *Builder {
	b.b.Items = append(b.b.Items, is...)
	return b
}

// Build returns the batch.
func (b *Builder) Build() *batch.Batch {
	return b.b
}

func code(n int) string {
	return "WIR-" + strconv.Itoa(n)
}
