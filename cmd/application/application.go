// Package application provides the application interface for wircatalog
// commands.
//
// Commands accept an Application rather than the concrete App so they can be
// tested with a Mock:
//
//	mock := &application.Mock{
//	    StoreFunc: func(ctx context.Context) (store.Store, error) {
//	        return memory.New(), nil
//	    },
//	}
//	cmd := apply.NewCommand(mock)
package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/lock"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// Application provides what commands need from the host.
//
// All methods must be safe for concurrent access.
type Application interface {
	// Batches returns the configured seed batches in precedence order.
	Batches() ([]*batch.Batch, error)

	// Reconciler returns a reconciler configured from the app settings.
	// Options passed here are applied after the configured ones.
	Reconciler(opts ...reconciler.Option) (reconciler.Reconciler, error)

	// Store returns the configured store, opening it on first use.
	Store(ctx context.Context) (store.Store, error)

	// Locker returns the locker that serializes applies.
	Locker(ctx context.Context) (lock.Locker, error)

	// ApplyTimeout bounds a single apply transaction.
	ApplyTimeout() time.Duration

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version returns the application version.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
