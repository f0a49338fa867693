package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// table maps one entity kind onto its SQL table. columns excludes id,
// created_at and updated_at.
type table struct {
	name    string
	columns []string
	values  func(catalogs.Record) []any
	scan    func(*sql.Rows) (catalogs.Record, error)
}

// upsertSQL keeps created_at of existing rows.
func (t table) upsertSQL() string {
	cols := append([]string{"id"}, t.columns...)
	cols = append(cols, "created_at", "updated_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	sets := make([]string, 0, len(t.columns)+1)
	for _, c := range t.columns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	sets = append(sets, "updated_at = excluded.updated_at")

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		t.name, strings.Join(cols, ", "), placeholders, strings.Join(sets, ", "))
}

var tables = map[identity.Kind]table{
	identity.KindWIRMaster: {
		name:    "wir_masters",
		columns: []string{"code", "name", "description", "sequence", "discipline", "phase", "active"},
		values: func(r catalogs.Record) []any {
			w := r.(catalogs.WIRMaster)
			return []any{w.Code, w.Name, w.Description, w.Sequence, w.Discipline.String(), w.Phase, w.Active}
		},
		scan: func(rows *sql.Rows) (catalogs.Record, error) {
			var (
				w          catalogs.WIRMaster
				discipline string
				created    string
			)
			if err := rows.Scan(&w.ID, &w.Code, &w.Name, &w.Description, &w.Sequence, &discipline, &w.Phase, &w.Active, &created); err != nil {
				return nil, err
			}
			w.Discipline = catalogs.Discipline(discipline)
			var err error
			w.CreatedAt, err = parseTime(created)
			return w, err
		},
	},
	identity.KindCategory: {
		name:    "categories",
		columns: []string{"wir", "name"},
		values: func(r catalogs.Record) []any {
			c := r.(catalogs.Category)
			return []any{c.WIR, c.Name}
		},
		scan: func(rows *sql.Rows) (catalogs.Record, error) {
			var (
				c       catalogs.Category
				created string
			)
			if err := rows.Scan(&c.ID, &c.WIR, &c.Name, &created); err != nil {
				return nil, err
			}
			var err error
			c.CreatedAt, err = parseTime(created)
			return c, err
		},
	},
	identity.KindReference: {
		name:    "references_",
		columns: []string{"name"},
		values: func(r catalogs.Record) []any {
			return []any{r.(catalogs.Reference).Name}
		},
		scan: func(rows *sql.Rows) (catalogs.Record, error) {
			var (
				ref     catalogs.Reference
				created string
			)
			if err := rows.Scan(&ref.ID, &ref.Name, &created); err != nil {
				return nil, err
			}
			var err error
			ref.CreatedAt, err = parseTime(created)
			return ref, err
		},
	},
	identity.KindChecklistItem: {
		name:    "checklist_items",
		columns: []string{"item_number", "wir", "description", "category_id", "reference_id", "sequence", "active"},
		values: func(r catalogs.Record) []any {
			i := r.(catalogs.ChecklistItem)
			return []any{i.ItemNumber, i.WIR, i.Description, i.CategoryID.String(), i.ReferenceID.String(), i.Sequence, i.Active}
		},
		scan: func(rows *sql.Rows) (catalogs.Record, error) {
			var (
				i       catalogs.ChecklistItem
				created string
			)
			if err := rows.Scan(&i.ID, &i.ItemNumber, &i.WIR, &i.Description, &i.CategoryID, &i.ReferenceID, &i.Sequence, &i.Active, &created); err != nil {
				return nil, err
			}
			var err error
			i.CreatedAt, err = parseTime(created)
			return i, err
		},
	},
}
