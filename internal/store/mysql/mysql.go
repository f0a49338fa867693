// Package mysql implements store.Store on MySQL through GORM. Every
// transaction runs on a pinned connection holding a MySQL advisory lock
// (GET_LOCK) from before BEGIN until after COMMIT or ROLLBACK, so
// concurrent applies against one database are serialized even across hosts.
package mysql

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Store is a MySQL catalog store.
type Store struct {
	db          *gorm.DB
	lockKey     string
	lockTimeout int
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLockKey sets the advisory lock name taken by each transaction.
func WithLockKey(key string) Option {
	return func(s *Store) { s.lockKey = key }
}

// WithLockTimeout sets how many seconds GET_LOCK waits.
func WithLockTimeout(seconds int) Option {
	return func(s *Store) { s.lockTimeout = seconds }
}

// Open connects to the database at dsn and migrates the catalog tables.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	dsn, err := normalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(mysql.Open(dsn), gormConfig(logging.FromContext(ctx)))
	if err != nil {
		return nil, errors.WrapStore("open", "", err)
	}
	s := New(db, opts...)
	if err := s.Migrate(ctx); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return s, nil
}

// normalizeDSN validates dsn and turns on the options the models rely on:
// DATETIME columns scan into time.Time in UTC.
func normalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", errors.NewConfigError("dsn", "invalid MySQL data source name", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// New wraps an open GORM handle.
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:          db,
		lockKey:     constants.ApplyLockKey,
		lockTimeout: constants.MySQLLockWaitSeconds,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates or updates the catalog tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels...); err != nil {
		return errors.WrapStore("migrate", "", err)
	}
	return nil
}

// Begin implements store.Store. It pins one connection, takes the advisory
// lock on it and opens the transaction on the same connection. It blocks
// until the lock is free or the lock timeout passes.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, errors.WrapStore("begin", "", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, errors.WrapStore("begin", "", err)
	}

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", s.lockKey, s.lockTimeout).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, errors.WrapStore("begin", "", err)
	}
	if !got.Valid || got.Int64 != 1 {
		_ = conn.Close()
		return nil, errors.NewLockError(s.lockKey, errors.ErrLockNotObtained)
	}

	t := &tx{conn: conn, lockKey: s.lockKey}
	session := s.db.WithContext(ctx)
	session.Statement.ConnPool = conn
	t.db = session.Begin()
	if t.db.Error != nil {
		err := errors.WrapStore("begin", "", t.db.Error)
		return nil, errors.Join(err, t.release())
	}
	return t, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type tx struct {
	db      *gorm.DB
	conn    *sql.Conn
	lockKey string
	done    bool
}

// Snapshot implements store.Tx.
func (t *tx) Snapshot(ctx context.Context) (*catalogs.State, error) {
	db := t.db.WithContext(ctx)
	state := catalogs.NewState()

	var masters []wirMaster
	if err := db.Order("id").Find(&masters).Error; err != nil {
		return nil, errors.WrapStore("snapshot", identity.KindWIRMaster.String(), err)
	}
	var categories []category
	if err := db.Order("id").Find(&categories).Error; err != nil {
		return nil, errors.WrapStore("snapshot", identity.KindCategory.String(), err)
	}
	var references []reference
	if err := db.Order("id").Find(&references).Error; err != nil {
		return nil, errors.WrapStore("snapshot", identity.KindReference.String(), err)
	}
	var items []checklistItem
	if err := db.Order("id").Find(&items).Error; err != nil {
		return nil, errors.WrapStore("snapshot", identity.KindChecklistItem.String(), err)
	}

	var rows []interface {
		record() (catalogs.Record, error)
	}
	for _, m := range masters {
		rows = append(rows, m)
	}
	for _, m := range categories {
		rows = append(rows, m)
	}
	for _, m := range references {
		rows = append(rows, m)
	}
	for _, m := range items {
		rows = append(rows, m)
	}
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			return nil, errors.WrapStore("snapshot", "", err)
		}
		if err := state.Put(r); err != nil {
			return nil, errors.WrapStore("snapshot", r.Kind().String(), err)
		}
	}
	return state, nil
}

// Upsert implements store.Tx.
func (t *tx) Upsert(ctx context.Context, kind identity.Kind, records []catalogs.Record) error {
	if len(records) == 0 {
		return nil
	}
	models, err := toModels(kind, records)
	if err != nil {
		return errors.NewStoreError("upsert", kind.String(), err)
	}
	err = upsertStatement(t.db.WithContext(ctx), kind).
		CreateInBatches(models, constants.UpsertBatchSize).Error
	return errors.WrapStore("upsert", kind.String(), err)
}

func upsertStatement(db *gorm.DB, kind identity.Kind) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(contentColumns[kind]),
	})
}

// toModels returns a typed slice so GORM can batch the insert.
func toModels(kind identity.Kind, records []catalogs.Record) (any, error) {
	for _, r := range records {
		if r.Kind() != kind {
			return nil, fmt.Errorf("record %s is a %s", r.RecordID(), r.Kind())
		}
	}
	switch kind {
	case identity.KindWIRMaster:
		out := make([]wirMaster, 0, len(records))
		for _, r := range records {
			out = append(out, toWIRMaster(r.(catalogs.WIRMaster)))
		}
		return out, nil
	case identity.KindCategory:
		out := make([]category, 0, len(records))
		for _, r := range records {
			out = append(out, toCategory(r.(catalogs.Category)))
		}
		return out, nil
	case identity.KindReference:
		out := make([]reference, 0, len(records))
		for _, r := range records {
			out = append(out, toReference(r.(catalogs.Reference)))
		}
		return out, nil
	case identity.KindChecklistItem:
		out := make([]checklistItem, 0, len(records))
		for _, r := range records {
			out = append(out, toChecklistItem(r.(catalogs.ChecklistItem)))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

// Aliases implements store.Tx.
func (t *tx) Aliases(ctx context.Context) ([]store.AliasRecord, error) {
	var rows []supersededID
	if err := t.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.WrapStore("aliases", "", err)
	}
	out := make([]store.AliasRecord, 0, len(rows))
	for _, row := range rows {
		a, err := row.alias()
		if err != nil {
			return nil, errors.WrapStore("aliases", row.Kind, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// RecordAliases implements store.Tx.
func (t *tx) RecordAliases(ctx context.Context, aliases []store.AliasRecord) error {
	if len(aliases) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]supersededID, 0, len(aliases))
	for _, a := range aliases {
		row := toSupersededID(a)
		if row.RecordedAt.IsZero() {
			row.RecordedAt = now
		}
		rows = append(rows, row)
	}
	err := t.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"canonical_id", "business_key", "batch"}),
	}).CreateInBatches(rows, constants.UpsertBatchSize).Error
	return errors.WrapStore("record aliases", "", err)
}

// Commit implements store.Tx. The advisory lock is released only after the
// commit, so the next holder sees the committed rows.
func (t *tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	err := errors.WrapStore("commit", "", t.db.Commit().Error)
	return errors.Join(err, t.release())
}

// Rollback implements store.Tx.
func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	err := errors.WrapStore("rollback", "", t.db.Rollback().Error)
	return errors.Join(err, t.release())
}

// release frees the advisory lock and returns the pinned connection.
// GET_LOCK is session scoped, so a connection whose lock could not be
// released is discarded instead of going back to the pool.
func (t *tx) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	var released sql.NullInt64
	err := t.conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", t.lockKey).Scan(&released)
	if err == nil && (!released.Valid || released.Int64 != 1) {
		err = fmt.Errorf("RELEASE_LOCK returned %v", released)
	}
	if err != nil {
		_ = t.conn.Raw(func(any) error { return sqldriver.ErrBadConn })
		_ = t.conn.Close()
		return errors.NewLockError(t.lockKey, err)
	}
	return t.conn.Close()
}

// gormConfig routes GORM's logger through zerolog at warn level.
func gormConfig(log *zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(gormWriter{log: log}, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}
}

type gormWriter struct {
	log *zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}
