package apply

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/store/memory"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/lock"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

func mockFor(s store.Store, format string) *application.Mock {
	return &application.Mock{
		StoreFunc:        func(context.Context) (store.Store, error) { return s, nil },
		OutputFormatFunc: func() string { return format },
	}
}

func runCommand(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestApply_Twice(t *testing.T) {
	s := memory.New()

	out, err := runCommand(t, mockFor(s, "json"))
	require.NoError(t, err)
	var first Report
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.Equal(t, 288, first.Added)
	assert.Equal(t, 37, first.AliasesRecorded)
	assert.False(t, first.DryRun)

	out, err = runCommand(t, mockFor(s, "json"))
	require.NoError(t, err)
	var second Report
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.Zero(t, second.Added)
	assert.Zero(t, second.Updated)
	assert.Equal(t, 288, second.Unchanged)
	assert.Empty(t, second.Skipped)
}

func TestApply_DryRun(t *testing.T) {
	s := memory.New()

	out, err := runCommand(t, mockFor(s, "table"), "--dry-run", "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, out, "Changes")
	assert.Zero(t, s.Len())
}

func TestApply_LockHeld(t *testing.T) {
	locker := lock.NewLocal()
	held, err := locker.Obtain(context.Background(), "wircatalog:apply")
	require.NoError(t, err)
	defer func() { _ = held.Release(context.Background()) }()

	mock := mockFor(memory.New(), "json")
	mock.LockerFunc = func(context.Context) (lock.Locker, error) { return locker, nil }
	mock.ApplyTimeoutFunc = func() time.Duration { return 20 * time.Millisecond }

	_, err = runCommand(t, mock)
	require.Error(t, err)
	assert.True(t, errors.IsLockNotObtained(err))
}

func TestApply_StoreFailure(t *testing.T) {
	s := memory.New()
	s.FailOn = identity.KindChecklistItem

	_, err := runCommand(t, mockFor(s, "json"))
	require.Error(t, err)
	assert.True(t, errors.IsStoreFailure(err))
	assert.Zero(t, s.Len())
}

func TestApply_IgnoreField(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_, err := runCommand(t, mockFor(s, "json"))
	require.NoError(t, err)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	state, err := tx.Snapshot(ctx)
	require.NoError(t, err)
	var retired []catalogs.Record
	for _, w := range state.WIRMasters {
		w.Active = false
		retired = append(retired, w)
	}
	require.NoError(t, tx.Upsert(ctx, identity.KindWIRMaster, retired))
	require.NoError(t, tx.Commit())

	out, err := runCommand(t, mockFor(s, "json"), "--ignore-field", "active")
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Updated)
	assert.Equal(t, 288, report.Unchanged)
}
