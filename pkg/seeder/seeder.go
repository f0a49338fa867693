// Package seeder writes a reconciled catalog into a store. An apply is
// idempotent: applying the same result twice writes nothing the second
// time, and ids the store already knows as superseded are never written
// again.
package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/differ"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Seeder applies reconciled catalogs.
type Seeder interface {
	// Apply writes the result's target state in one transaction.
	Apply(ctx context.Context, result *reconciler.Result) (*ApplyResult, error)
}

// ApplyResult describes what an apply did.
type ApplyResult struct {
	Changeset       *differ.Changeset
	Skipped         []identity.ID // target ids the store knows as superseded
	AliasesRecorded int
	DryRun          bool
	Duration        time.Duration
}

// Summary returns a human-readable summary of the apply.
func (r *ApplyResult) Summary() string {
	verb := "Applied"
	if r.DryRun {
		verb = "Dry run"
	}
	return fmt.Sprintf("%s: %d added, %d updated, %d unchanged, %d skipped as superseded, %d aliases recorded",
		verb, r.Changeset.Summary.Added, r.Changeset.Summary.Updated, r.Changeset.Summary.Unchanged,
		len(r.Skipped), r.AliasesRecorded)
}

type seeder struct {
	store store.Store
	opts  *options
}

// New returns a Seeder writing to s.
func New(s store.Store, opts ...Option) (Seeder, error) {
	if s == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &seeder{store: s, opts: o}, nil
}

// Apply implements Seeder.
func (s *seeder) Apply(ctx context.Context, result *reconciler.Result) (*ApplyResult, error) {
	if result == nil || !result.IsSuccess() {
		return nil, &errors.ValidationError{Field: "result", Message: "reconciliation did not succeed; nothing is applied"}
	}
	start := time.Now()

	if s.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.timeout)
		defer cancel()
	}
	ctx = logging.WithOperation(ctx, "apply")
	logger := s.logger(ctx)

	// Step 1: serialize with other applies
	held, err := s.opts.locker.Obtain(ctx, s.opts.lockKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("Failed to release apply lock")
		}
	}()

	// Step 2: one transaction for every write
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, storeError("begin", "", err)
	}
	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				logger.Warn().Err(err).Msg("Rollback failed")
			}
		}
	}()

	// Step 3: load what the store already knows as superseded
	persisted, err := tx.Aliases(ctx)
	if err != nil {
		return nil, storeError("aliases", "", err)
	}
	known, err := aliasTable(persisted)
	if err != nil {
		return nil, storeError("aliases", "", err)
	}

	// Step 4: drop superseded ids and rewrite foreign keys
	target, skipped := prepareTarget(result.State, known)

	// Step 5: snapshot
	existing, err := tx.Snapshot(ctx)
	if err != nil {
		return nil, storeError("snapshot", "", err)
	}

	// Step 6: plan
	cs := differ.New(differ.WithIgnoredFields(s.opts.ignored...)).States(existing, target)
	aliases := newAliases(result.Aliases, persisted, known, logger)

	out := &ApplyResult{
		Changeset:       cs,
		Skipped:         skipped,
		AliasesRecorded: len(aliases),
		DryRun:          s.opts.dryRun,
	}
	if s.opts.dryRun {
		out.Duration = time.Since(start)
		logger.Info().Str("changes", cs.String()).Msg("Dry run; rolling back")
		return out, nil
	}

	// Step 7: write in dependency order
	for _, k := range cs.Kinds {
		if !k.HasChanges() {
			continue
		}
		kctx := logging.WithKind(logging.WithLogger(ctx, logger), k.Kind.String())
		if err := tx.Upsert(kctx, k.Kind, k.Writes()); err != nil {
			return nil, storeError("upsert", k.Kind.String(), err)
		}
		logging.FromContext(kctx).Debug().
			Int("added", len(k.Added)).
			Int("updated", len(k.Updated)).
			Msg("Upserted records")
	}

	// Step 8: persist new aliases
	if err := tx.RecordAliases(ctx, aliases); err != nil {
		return nil, storeError("record aliases", "", err)
	}

	// Step 9: commit
	if err := tx.Commit(); err != nil {
		return nil, storeError("commit", "", err)
	}
	committed = true
	out.Duration = time.Since(start)

	logger.Info().
		Int("added", cs.Summary.Added).
		Int("updated", cs.Summary.Updated).
		Int("unchanged", cs.Summary.Unchanged).
		Int("skipped", len(skipped)).
		Int("aliases_recorded", len(aliases)).
		Dur("duration", out.Duration).
		Msg("Applied catalog")

	return out, nil
}

func (s *seeder) logger(ctx context.Context) *zerolog.Logger {
	if s.opts.logger != nil {
		return s.opts.logger
	}
	return logging.FromContext(ctx)
}

// aliasTable rebuilds the persisted aliases as a resolvable table.
func aliasTable(persisted []store.AliasRecord) (*reconciler.AliasTable, error) {
	table, err := reconciler.NewAliasTable()
	if err != nil {
		return nil, err
	}
	for _, a := range persisted {
		if err := table.Add(reconciler.Alias{From: a.From, To: a.To, Kind: a.Kind, BusinessKey: a.BusinessKey}); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// prepareTarget returns a copy of state without the ids known as
// superseded, with checklist item foreign keys resolved through known.
func prepareTarget(state *catalogs.State, known *reconciler.AliasTable) (*catalogs.State, []identity.ID) {
	target := catalogs.NewState()
	var skipped []identity.ID
	for _, r := range state.All() {
		if known.Superseded(r.RecordID()) {
			skipped = append(skipped, r.RecordID())
			continue
		}
		if item, ok := r.(catalogs.ChecklistItem); ok {
			r = reconciler.RewriteItem(item, known)
		}
		_ = target.Put(r)
	}
	return target, skipped
}

// newAliases returns the aliases of the result that the store does not
// hold yet. An alias that would close a cycle with a persisted one is
// dropped with a warning.
func newAliases(table *reconciler.AliasTable, persisted []store.AliasRecord, known *reconciler.AliasTable, logger *zerolog.Logger) []store.AliasRecord {
	stored := make(map[identity.ID]identity.ID, len(persisted))
	for _, a := range persisted {
		stored[a.From] = a.To
	}

	var out []store.AliasRecord
	for _, a := range table.List() {
		if to, ok := stored[a.From]; ok && to == a.To {
			continue
		}
		if err := known.Add(a); err != nil {
			logger.Warn().Err(err).Str("alias", a.String()).Msg("Alias conflicts with the stored alias table")
			continue
		}
		out = append(out, store.AliasRecord{
			From:        a.From,
			To:          a.To,
			Kind:        a.Kind,
			BusinessKey: a.BusinessKey,
			Batch:       a.ToBatch,
		})
	}
	return out
}

func storeError(operation, kind string, err error) error {
	if errors.IsStoreFailure(err) || errors.IsLockNotObtained(err) {
		return err
	}
	return errors.WrapStore(operation, kind, err)
}
