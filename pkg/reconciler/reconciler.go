// Package reconciler merges ordered seed batches into one target state.
// It detects same-id content collisions and cross-generation business-key
// collisions, resolves both by batch precedence, rewrites foreign keys
// through the resulting alias table and checks the referential and
// sequence integrity of the outcome. It performs no writes.
package reconciler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
)

// Reconciler is the main interface for reconciling seed batches.
type Reconciler interface {
	// Reconcile merges batches, oldest generation first. On an authoring
	// error the returned result carries every problem found and the
	// returned error joins them.
	Reconcile(ctx context.Context, batches []*batch.Batch) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	logger        *zerolog.Logger
	strict        bool
	knownWIRCodes []string
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		logger:        options.logger,
		strict:        options.strict,
		knownWIRCodes: options.knownWIRCodes,
	}, nil
}

// reconcileContext holds shared state for reconciliation.
type reconcileContext struct {
	ctx       context.Context
	batches   []*batch.Batch
	result    *Result
	logger    *zerolog.Logger
	startTime time.Time
}

// Reconcile performs reconciliation with clean step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, batches []*batch.Batch) (*Result, error) {
	// Step 1: Initialize context and validate every batch
	rctx, err := r.initialize(ctx, batches)
	if err != nil {
		return nil, err
	}
	if err := r.validate(rctx); err != nil {
		return r.fail(rctx, err)
	}

	// Step 2: Resolve same-id content collisions
	decls := r.mergeDeclarations(rctx)

	// Step 3: Build the business-key index per kind
	indexes, err := buildIndexes(ctx, decls)
	if err != nil {
		return nil, err
	}

	// Step 4: Resolve cross-generation collisions into the alias table
	table, err := r.resolveCollisions(rctx, decls, indexes)
	if err != nil {
		return nil, err
	}

	// Step 5: Place survivors in the target state, rewriting foreign keys
	state := r.buildState(rctx, decls, table)

	// Step 6: Integrity check
	errs := r.checkIntegrity(rctx, state)

	// Step 7: Sequence check
	errs = append(errs, r.checkSequences(state)...)

	rctx.result.Errors = append(rctx.result.Errors, errs...)
	if len(rctx.result.Errors) > 0 {
		return r.fail(rctx, errors.Join(rctx.result.Errors...))
	}

	rctx.result.State = state
	rctx.result.Aliases = table
	rctx.result.Finalize()

	rctx.logger.Info().
		Int("batches", len(batches)).
		Int("records", state.Len()).
		Int("aliases", table.Len()).
		Int("overwrites", len(rctx.result.Report.Overwrites)).
		Int("warnings", len(rctx.result.Report.Warnings)).
		Dur("duration", rctx.result.Metadata.Duration).
		Msg("Reconciled seed batches")

	return rctx.result, nil
}

// initialize sets up reconciliation context.
func (r *reconciler) initialize(ctx context.Context, batches []*batch.Batch) (*reconcileContext, error) {
	logger := r.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	if len(batches) == 0 {
		return nil, &errors.ValidationError{
			Field:   "batches",
			Message: "at least one seed batch is required",
		}
	}

	seen := make(map[string]bool, len(batches))
	for _, b := range batches {
		if b == nil {
			return nil, &errors.ValidationError{Field: "batches", Message: "nil seed batch"}
		}
		if seen[b.Name] {
			return nil, &errors.ValidationError{
				Field:   "batches",
				Value:   b.Name,
				Message: "seed batch supplied more than once",
			}
		}
		seen[b.Name] = true
	}

	result := NewResult()
	result.Metadata.Batches = batch.Names(batches)
	result.Metadata.Strict = r.strict

	logger.Debug().
		Strs("batches", result.Metadata.Batches).
		Bool("strict", r.strict).
		Msg("Starting reconciliation")

	return &reconcileContext{
		ctx:       logging.WithLogger(ctx, logger),
		batches:   batches,
		result:    result,
		logger:    logger,
		startTime: result.Metadata.StartTime,
	}, nil
}

// validate checks every record of every batch. Stage codes are known if
// any batch declares them or the caller supplied them.
func (r *reconciler) validate(rctx *reconcileContext) error {
	known := append([]string{}, r.knownWIRCodes...)
	for _, b := range rctx.batches {
		known = append(known, b.WIRCodes()...)
	}
	v := catalogs.NewValidator(known...)
	if len(known) == 0 && staged(rctx.batches) {
		msg := "no WIR masters are declared or configured; stage codes of categories and items are not checked against known stages"
		rctx.result.Report.Warnings = append(rctx.result.Report.Warnings, msg)
		rctx.logger.Warn().Msg(msg)
	}

	var errs []error
	for _, b := range rctx.batches {
		log := logging.FromContext(logging.WithBatch(rctx.ctx, b.Name))
		if err := b.Validate(v); err != nil {
			log.Debug().Err(err).Msg("Seed batch failed validation")
			errs = append(errs, err)
			continue
		}
		log.Debug().Int("records", b.Len()).Msg("Seed batch is valid")
	}
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		rctx.result.Errors = append(rctx.result.Errors, unjoin(err)...)
	}
	return errors.Join(errs...)
}

// staged reports whether any batch has a category or item that names a stage.
func staged(batches []*batch.Batch) bool {
	for _, b := range batches {
		if len(b.Items) > 0 {
			return true
		}
		for _, c := range b.Categories {
			if c.WIR != "" {
				return true
			}
		}
	}
	return false
}

// fail finalizes a failed result. No state is attached to it, but the
// report keeps whatever was resolved before the failure.
func (r *reconciler) fail(rctx *reconcileContext, err error) (*Result, error) {
	for _, e := range rctx.result.Errors {
		rctx.result.Report.Errors = append(rctx.result.Report.Errors, e.Error())
	}
	rctx.result.Finalize()
	rctx.logger.Error().
		Int("errors", len(rctx.result.Errors)).
		Msg("Reconciliation failed")
	return rctx.result, err
}

func unjoin(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
