package mysql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/testhelpers"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// dryRunDB builds statements without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "wir:wir@tcp(127.0.0.1:3306)/wircatalog?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestUpsertStatement_KeepsCreatedAt(t *testing.T) {
	db := dryRunDB(t)
	models, err := toModels(identity.KindReference, []catalogs.Record{testhelpers.Reference(2, 1, "General")})
	require.NoError(t, err)

	stmt := upsertStatement(db, identity.KindReference).Create(models).Statement
	sql := stmt.SQL.String()
	assert.Contains(t, sql, "INSERT INTO `references_`")
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE")
	assert.Contains(t, sql, "`name`=VALUES(`name`)")
	assert.NotContains(t, sql, "`created_at`=VALUES(`created_at`)")
}

func TestToModels_KindMismatch(t *testing.T) {
	_, err := toModels(identity.KindCategory, []catalogs.Record{testhelpers.Reference(2, 1, "General")})
	assert.Error(t, err)

	_, err = toModels(identity.KindUnknown, nil)
	assert.Error(t, err)
}

func TestModelRoundTrip(t *testing.T) {
	w := testhelpers.WIR(4, "Structural Assembly")
	w.Phase = "Assembly"
	w.CreatedAt = testhelpers.SeedDate
	c := testhelpers.Category(4, 1, "WIR-4", "Structural Frame")
	c.CreatedAt = testhelpers.SeedDate
	r := testhelpers.Reference(2, 1, "General")
	r.CreatedAt = testhelpers.SeedDate
	i := testhelpers.Item(4, 1, "WIR-4", "4.1", c.ID, r.ID)
	i.CreatedAt = testhelpers.SeedDate

	for _, tc := range []struct {
		in  catalogs.Record
		out func() (catalogs.Record, error)
	}{
		{w, toWIRMaster(w).record},
		{c, toCategory(c).record},
		{r, toReference(r).record},
		{i, toChecklistItem(i).record},
	} {
		got, err := tc.out()
		require.NoError(t, err)
		assert.Equal(t, tc.in, got)
	}
}

func TestAliasRoundTrip(t *testing.T) {
	a := store.AliasRecord{
		From:        identity.MustNew(identity.KindCategory, 0, 1),
		To:          identity.MustNew(identity.KindCategory, 2, 1),
		Kind:        identity.KindCategory,
		BusinessKey: "WIR-2|hvac duct",
		Batch:       "complete",
		RecordedAt:  testhelpers.SeedDate,
	}
	got, err := toSupersededID(a).alias()
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestContentColumnsExcludeCreatedAt(t *testing.T) {
	for _, kind := range identity.Kinds() {
		cols, ok := contentColumns[kind]
		require.True(t, ok, kind)
		assert.NotContains(t, cols, "created_at", kind)
		assert.Contains(t, cols, "updated_at", kind)
	}
}

func TestNormalizeDSN(t *testing.T) {
	dsn, err := normalizeDSN("seeder:secret@tcp(db:3306)/boxes")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "tcp(db:3306)/boxes")

	_, err = normalizeDSN("not a dsn")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

const testLockKey = "wircatalog:test"

// mockStore returns a store whose connection is scripted by sqlmock.
// Expectations are matched in order.
func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DisableAutomaticPing: true, Logger: logger.Discard})
	require.NoError(t, err)
	return New(db, WithLockKey(testLockKey), WithLockTimeout(5)), mock
}

func expectGetLock(mock sqlmock.Sqlmock, got int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT GET_LOCK(?, ?)")).
		WithArgs(testLockKey, 5).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(got))
}

func expectReleaseLock(mock sqlmock.Sqlmock, released int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT RELEASE_LOCK(?)")).
		WithArgs(testLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(released))
}

func TestTx_CommitBeforeReleasingLock(t *testing.T) {
	s, mock := mockStore(t)
	expectGetLock(mock, 1)
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectReleaseLock(mock, 1)

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_RollbackBeforeReleasingLock(t *testing.T) {
	s, mock := mockStore(t)
	expectGetLock(mock, 1)
	mock.ExpectBegin()
	mock.ExpectRollback()
	expectReleaseLock(mock, 1)

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBegin_LockBusy(t *testing.T) {
	s, mock := mockStore(t)
	expectGetLock(mock, 0)

	_, err := s.Begin(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsLockNotObtained(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTx_CommitReportsUnreleasedLock(t *testing.T) {
	s, mock := mockStore(t)
	expectGetLock(mock, 1)
	mock.ExpectBegin()
	mock.ExpectCommit()
	expectReleaseLock(mock, 0)

	tx, err := s.Begin(context.Background())
	require.NoError(t, err)
	err = tx.Commit()
	require.Error(t, err)

	var lockErr *errors.LockError
	require.True(t, errors.As(err, &lockErr))
	assert.Equal(t, testLockKey, lockErr.Key)
	assert.NoError(t, mock.ExpectationsWereMet())
}
