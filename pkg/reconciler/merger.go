package reconciler

import (
	"fmt"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/identity"
)

// mergeDeclarations walks the batches in order and keeps, for every id,
// the declaration from the latest batch. Earlier content that differs is
// reported as an overwrite.
func (r *reconciler) mergeDeclarations(rctx *reconcileContext) map[identity.ID]declaration {
	decls := make(map[identity.ID]declaration)

	for bi, b := range rctx.batches {
		for _, rec := range b.Records() {
			rctx.result.Metadata.Stats.RecordsRead++
			id := rec.RecordID()

			if !id.Conformant() {
				r.anomaly(rctx, errors.NewMalformedRecordError(b.Name, rec.Kind().String(), rec.BusinessKey(),
					fmt.Sprintf("id %s does not follow the kind-namespace-sequence layout", id)))
			}

			prev, seen := decls[id]
			decls[id] = declaration{record: rec, batch: bi}
			if !seen || catalogs.SameContent(prev.record, rec) {
				continue
			}

			from, to := rctx.batches[prev.batch].Name, b.Name
			rctx.result.Report.Overwrites = append(rctx.result.Report.Overwrites, Overwrite{
				ID:        id,
				Kind:      rec.Kind(),
				Key:       rec.BusinessKey(),
				FromBatch: from,
				ToBatch:   to,
				Fields:    catalogs.ChangedFields(prev.record, rec),
			})
			rctx.logger.Debug().
				Str("id", id.String()).
				Str("from_batch", from).
				Str("to_batch", to).
				Msg("Same-id content collision, later batch wins")

			if prev.record.BusinessKey() != rec.BusinessKey() {
				r.anomaly(rctx, errors.NewMalformedRecordError(to, rec.Kind().String(), rec.BusinessKey(),
					fmt.Sprintf("id %s changes business key from %q (batch %s)", id, prev.record.BusinessKey(), from)))
			}
		}
	}
	return decls
}

// resolveCollisions picks the canonical id for every business key claimed
// by more than one id and records the others as aliases.
func (r *reconciler) resolveCollisions(rctx *reconcileContext, decls map[identity.ID]declaration, indexes map[identity.Kind]keyIndex) (*AliasTable, error) {
	table, _ := NewAliasTable()

	// Kinds and keys are visited in a fixed order so the report is stable.
	for _, kind := range identity.Kinds() {
		idx := indexes[kind]
		for _, key := range idx.sortedKeys() {
			ids := idx[key]
			if len(ids) < 2 {
				continue
			}
			canonical := ids[len(ids)-1]
			toBatch := rctx.batches[decls[canonical].batch].Name
			for _, superseded := range ids[:len(ids)-1] {
				alias := Alias{
					From:        superseded,
					To:          canonical,
					Kind:        kind,
					BusinessKey: key,
					FromBatch:   rctx.batches[decls[superseded].batch].Name,
					ToBatch:     toBatch,
				}
				if err := table.Add(alias); err != nil {
					return nil, err
				}
				rctx.result.Report.Aliases = append(rctx.result.Report.Aliases, alias)
				rctx.logger.Debug().
					Str("kind", kind.String()).
					Str("key", key).
					Str("from", superseded.String()).
					Str("to", canonical.String()).
					Msg("Cross-generation collision, superseding older id")
			}
		}
	}
	return table, nil
}

// buildState places every surviving record into the target state, rewriting
// checklist item foreign keys through the alias table.
func (r *reconciler) buildState(rctx *reconcileContext, decls map[identity.ID]declaration, table *AliasTable) *catalogs.State {
	state := catalogs.NewState()
	for id, d := range decls {
		if table.Superseded(id) {
			continue
		}
		rec := d.record
		if item, ok := rec.(catalogs.ChecklistItem); ok {
			fixed, n := rewriteItem(item, table)
			rctx.result.Metadata.Stats.FKRewrites += n
			rec = fixed
		}
		_ = state.Put(rec)
	}
	return state
}

// rewriteItem resolves an item's category and reference through the alias
// table and returns how many of the two were rewritten.
func rewriteItem(item catalogs.ChecklistItem, table *AliasTable) (catalogs.ChecklistItem, int) {
	rewritten := 0
	if to, ok := table.Resolve(item.CategoryID); ok {
		item.CategoryID = to
		rewritten++
	}
	if to, ok := table.Resolve(item.ReferenceID); ok {
		item.ReferenceID = to
		rewritten++
	}
	return item, rewritten
}

// RewriteItem resolves a checklist item's foreign keys through table. It
// is used by callers that hold an alias table of their own, such as the
// persisted one.
func RewriteItem(item catalogs.ChecklistItem, table *AliasTable) catalogs.ChecklistItem {
	item, _ = rewriteItem(item, table)
	return item
}

// anomaly records a recoverable problem: an error in strict mode, a
// warning otherwise.
func (r *reconciler) anomaly(rctx *reconcileContext, err error) {
	if r.strict {
		rctx.result.Errors = append(rctx.result.Errors, err)
		return
	}
	rctx.result.Report.Warnings = append(rctx.result.Report.Warnings, err.Error())
	rctx.logger.Warn().Err(err).Msg("Reconciliation anomaly")
}
