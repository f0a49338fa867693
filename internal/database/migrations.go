package database

// migrations is an ordered list of SQL migration groups. The version number
// is the 1-based index into this slice.
var migrations = [][]string{
	// Migration 1: catalog tables
	{
		// code is not unique: a superseded stage row keeps its code.
		`CREATE TABLE wir_masters (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			sequence INTEGER NOT NULL,
			discipline TEXT NOT NULL,
			phase TEXT NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_wir_masters_code ON wir_masters(code)`,

		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			wir TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_categories_wir ON categories(wir)`,

		`CREATE TABLE references_ (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,

		`CREATE TABLE checklist_items (
			id TEXT PRIMARY KEY,
			item_number TEXT NOT NULL,
			wir TEXT NOT NULL,
			description TEXT NOT NULL,
			category_id TEXT NOT NULL REFERENCES categories(id),
			reference_id TEXT NOT NULL REFERENCES references_(id),
			sequence INTEGER NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_checklist_items_wir_sequence ON checklist_items(wir, sequence)`,
		`CREATE INDEX idx_checklist_items_category ON checklist_items(category_id)`,
		`CREATE INDEX idx_checklist_items_reference ON checklist_items(reference_id)`,

		`CREATE TABLE superseded_ids (
			id TEXT PRIMARY KEY,
			canonical_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			business_key TEXT NOT NULL DEFAULT '',
			batch TEXT NOT NULL DEFAULT '',
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX idx_superseded_ids_canonical ON superseded_ids(canonical_id)`,
	},
}
