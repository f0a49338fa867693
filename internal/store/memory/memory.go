// Package memory implements store.Store in process memory. A transaction
// works on a copy of the committed data; Commit swaps the copy in.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Store is an in-memory catalog store. Transactions are serialized: Begin
// blocks until the previous transaction ends.
type Store struct {
	txMu sync.Mutex // held for the lifetime of a transaction

	mu      sync.RWMutex
	state   *catalogs.State
	aliases map[identity.ID]store.AliasRecord

	// FailOn makes Upsert of the given kind fail. Used to test rollback.
	FailOn identity.Kind
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		state:   catalogs.NewState(),
		aliases: make(map[identity.ID]store.AliasRecord),
	}
}

// Begin implements store.Store.
func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapStore("begin", "", err)
	}
	s.txMu.Lock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	aliases := make(map[identity.ID]store.AliasRecord, len(s.aliases))
	for k, v := range s.aliases {
		aliases[k] = v
	}
	return &tx{
		store:   s,
		state:   s.state.Clone(),
		aliases: aliases,
		now:     time.Now().UTC(),
	}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of committed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Len()
}

type tx struct {
	store   *Store
	state   *catalogs.State
	aliases map[identity.ID]store.AliasRecord
	now     time.Time
	done    bool
}

func (t *tx) check() error {
	if t.done {
		return errors.NewStoreError("use", "", fmt.Errorf("transaction already finished"))
	}
	return nil
}

// Snapshot implements store.Tx.
func (t *tx) Snapshot(ctx context.Context) (*catalogs.State, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.state.Clone(), nil
}

// Upsert implements store.Tx. Checklist items must point at stored
// categories and references.
func (t *tx) Upsert(ctx context.Context, kind identity.Kind, records []catalogs.Record) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.WrapStore("upsert", kind.String(), err)
	}
	if t.store.FailOn != identity.KindUnknown && t.store.FailOn == kind {
		return errors.NewStoreError("upsert", kind.String(), fmt.Errorf("injected failure"))
	}

	for _, r := range records {
		if r.Kind() != kind {
			return errors.NewStoreError("upsert", kind.String(), fmt.Errorf("record %s is a %s", r.RecordID(), r.Kind()))
		}
		if item, ok := r.(catalogs.ChecklistItem); ok {
			if !t.state.Has(item.CategoryID) || !t.state.Has(item.ReferenceID) {
				return errors.NewStoreError("upsert", kind.String(),
					fmt.Errorf("%s: foreign key constraint failed", item.ID))
			}
		}
		created := r.Created()
		if existing, ok := t.state.Get(r.RecordID()); ok {
			created = existing.Created()
		}
		if created.IsZero() {
			created = t.now
		}
		if err := t.state.Put(catalogs.WithCreated(withoutCreated(r), created)); err != nil {
			return errors.WrapStore("upsert", kind.String(), err)
		}
	}
	return nil
}

// Aliases implements store.Tx.
func (t *tx) Aliases(ctx context.Context) ([]store.AliasRecord, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := make([]store.AliasRecord, 0, len(t.aliases))
	for _, a := range t.aliases {
		out = append(out, a)
	}
	store.SortAliases(out)
	return out, nil
}

// RecordAliases implements store.Tx.
func (t *tx) RecordAliases(ctx context.Context, aliases []store.AliasRecord) error {
	if err := t.check(); err != nil {
		return err
	}
	for _, a := range aliases {
		if prev, ok := t.aliases[a.From]; ok {
			a.RecordedAt = prev.RecordedAt
		}
		if a.RecordedAt.IsZero() {
			a.RecordedAt = t.now
		}
		t.aliases[a.From] = a
	}
	return nil
}

// Commit implements store.Tx.
func (t *tx) Commit() error {
	if err := t.check(); err != nil {
		return err
	}
	t.store.mu.Lock()
	t.store.state = t.state
	t.store.aliases = t.aliases
	t.store.mu.Unlock()
	t.finish()
	return nil
}

// Rollback implements store.Tx.
func (t *tx) Rollback() error {
	if !t.done {
		t.finish()
	}
	return nil
}

func (t *tx) finish() {
	t.done = true
	t.store.txMu.Unlock()
}

// withoutCreated clears the creation timestamp so WithCreated sets it.
func withoutCreated(r catalogs.Record) catalogs.Record {
	switch v := r.(type) {
	case catalogs.WIRMaster:
		v.CreatedAt = time.Time{}
		return v
	case catalogs.Category:
		v.CreatedAt = time.Time{}
		return v
	case catalogs.Reference:
		v.CreatedAt = time.Time{}
		return v
	case catalogs.ChecklistItem:
		v.CreatedAt = time.Time{}
		return v
	}
	return r
}
