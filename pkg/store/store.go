// Package store defines the transactional persistence contract the seeder
// writes the catalog through. Backends live under internal/store.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// Store opens transactions against a catalog database.
type Store interface {
	// Begin starts a transaction. Every write of one apply goes through a
	// single transaction.
	Begin(ctx context.Context) (Tx, error)

	// Close releases the underlying connection.
	Close() error
}

// Tx is one all-or-nothing unit of work.
type Tx interface {
	// Snapshot returns every catalog row currently stored.
	Snapshot(ctx context.Context) (*catalogs.State, error)

	// Upsert inserts records or overwrites the content of existing rows
	// with the same id. The stored created_at of an existing row is kept.
	Upsert(ctx context.Context, kind identity.Kind, records []catalogs.Record) error

	// Aliases returns the persisted superseded-id table.
	Aliases(ctx context.Context) ([]AliasRecord, error)

	// RecordAliases persists superseded ids. Recording an alias that is
	// already stored updates its canonical id.
	RecordAliases(ctx context.Context, aliases []AliasRecord) error

	// Commit makes the writes durable.
	Commit() error

	// Rollback discards the writes. It is safe to call after Commit.
	Rollback() error
}

// AliasRecord is one persisted superseded id and the canonical id that
// replaced it.
type AliasRecord struct {
	From        identity.ID   `json:"from" yaml:"from"`
	To          identity.ID   `json:"to" yaml:"to"`
	Kind        identity.Kind `json:"kind" yaml:"kind"`
	BusinessKey string        `json:"business_key" yaml:"business_key"`
	Batch       string        `json:"batch" yaml:"batch"`
	RecordedAt  time.Time     `json:"recorded_at" yaml:"recorded_at"`
}

// ReadAliases reads the persisted alias table in a read-only transaction.
func ReadAliases(ctx context.Context, s Store) ([]AliasRecord, error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return nil, errors.WrapStore("begin", "", err)
	}
	defer func() { _ = tx.Rollback() }()

	aliases, err := tx.Aliases(ctx)
	if err != nil {
		return nil, errors.WrapStore("aliases", "", err)
	}
	SortAliases(aliases)
	return aliases, nil
}

// SortAliases orders aliases by kind write order, then superseded id.
func SortAliases(aliases []AliasRecord) {
	rank := make(map[identity.Kind]int)
	for i, k := range identity.Kinds() {
		rank[k] = i
	}
	sort.Slice(aliases, func(i, j int) bool {
		if aliases[i].Kind != aliases[j].Kind {
			return rank[aliases[i].Kind] < rank[aliases[j].Kind]
		}
		return aliases[i].From.String() < aliases[j].From.String()
	})
}
