// Package sqlite implements store.Store on SQLite through database/sql and
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/database"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Store is a SQLite catalog store.
type Store struct {
	db    *sql.DB
	owned bool
}

var _ store.Store = (*Store)(nil)

// Open opens the database at dsn and applies pending migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := database.Open(dsn)
	if err != nil {
		return nil, errors.WrapStore("open", "", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, errors.WrapStore("migrate", "", err)
	}
	return &Store{db: db, owned: true}, nil
}

// New wraps an already migrated database. Close leaves db open.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Begin implements store.Store.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.WrapStore("begin", "", err)
	}
	return &tx{tx: sqlTx, now: time.Now().UTC()}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

type tx struct {
	tx  *sql.Tx
	now time.Time
}

// Snapshot implements store.Tx.
func (t *tx) Snapshot(ctx context.Context) (*catalogs.State, error) {
	state := catalogs.NewState()
	for _, kind := range identity.Kinds() {
		tbl := tables[kind]
		if err := t.scan(ctx, tbl, state); err != nil {
			return nil, errors.WrapStore("snapshot", kind.String(), err)
		}
	}
	return state, nil
}

func (t *tx) scan(ctx context.Context, tbl table, state *catalogs.State) error {
	query := fmt.Sprintf("SELECT id, %s, created_at FROM %s ORDER BY id", strings.Join(tbl.columns, ", "), tbl.name)
	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		r, err := tbl.scan(rows)
		if err != nil {
			return err
		}
		if err := state.Put(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Upsert implements store.Tx.
func (t *tx) Upsert(ctx context.Context, kind identity.Kind, records []catalogs.Record) error {
	if len(records) == 0 {
		return nil
	}
	tbl, ok := tables[kind]
	if !ok {
		return errors.NewStoreError("upsert", kind.String(), errors.NewValidationError("kind", kind, "unknown entity kind"))
	}

	stmt, err := t.tx.PrepareContext(ctx, tbl.upsertSQL())
	if err != nil {
		return errors.WrapStore("upsert", kind.String(), err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if r.Kind() != kind {
			return errors.NewStoreError("upsert", kind.String(),
				fmt.Errorf("record %s is a %s", r.RecordID(), r.Kind()))
		}
		created := r.Created()
		if created.IsZero() {
			created = t.now
		}
		args := []any{r.RecordID().String()}
		args = append(args, tbl.values(r)...)
		args = append(args, formatTime(created), formatTime(t.now))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.WrapStore("upsert", kind.String(), fmt.Errorf("%s: %w", r.RecordID(), err))
		}
	}
	return nil
}

// Aliases implements store.Tx.
func (t *tx) Aliases(ctx context.Context) ([]store.AliasRecord, error) {
	rows, err := t.tx.QueryContext(ctx,
		"SELECT id, canonical_id, kind, business_key, batch, recorded_at FROM superseded_ids ORDER BY id")
	if err != nil {
		return nil, errors.WrapStore("aliases", "", err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.AliasRecord
	for rows.Next() {
		var (
			a          store.AliasRecord
			kind       string
			recordedAt string
		)
		if err := rows.Scan(&a.From, &a.To, &kind, &a.BusinessKey, &a.Batch, &recordedAt); err != nil {
			return nil, errors.WrapStore("aliases", "", err)
		}
		a.Kind = identity.Kind(kind)
		if a.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, errors.WrapStore("aliases", "", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStore("aliases", "", err)
	}
	return out, nil
}

// RecordAliases implements store.Tx.
func (t *tx) RecordAliases(ctx context.Context, aliases []store.AliasRecord) error {
	if len(aliases) == 0 {
		return nil
	}
	stmt, err := t.tx.PrepareContext(ctx, `INSERT INTO superseded_ids
		(id, canonical_id, kind, business_key, batch, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			canonical_id = excluded.canonical_id,
			business_key = excluded.business_key,
			batch = excluded.batch`)
	if err != nil {
		return errors.WrapStore("record aliases", "", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range aliases {
		recordedAt := a.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = t.now
		}
		if _, err := stmt.ExecContext(ctx, a.From.String(), a.To.String(), a.Kind.String(),
			a.BusinessKey, a.Batch, formatTime(recordedAt)); err != nil {
			return errors.WrapStore("record aliases", a.Kind.String(), err)
		}
	}
	return nil
}

// Commit implements store.Tx.
func (t *tx) Commit() error {
	return errors.WrapStore("commit", "", t.tx.Commit())
}

// Rollback implements store.Tx.
func (t *tx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return errors.WrapStore("rollback", "", err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
