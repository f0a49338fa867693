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

// Mock provides a mock implementation of Application for testing.
// A nil function field falls back to a default: the embedded batches, a
// default reconciler, a no-op locker and a nil store.
type Mock struct {
	BatchesFunc      func() ([]*batch.Batch, error)
	ReconcilerFunc   func(opts ...reconciler.Option) (reconciler.Reconciler, error)
	StoreFunc        func(ctx context.Context) (store.Store, error)
	LockerFunc       func(ctx context.Context) (lock.Locker, error)
	ApplyTimeoutFunc func() time.Duration
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Batches returns batches using the mock function or the embedded batches.
func (m *Mock) Batches() ([]*batch.Batch, error) {
	if m.BatchesFunc != nil {
		return m.BatchesFunc()
	}
	return batch.Embedded()
}

// Reconciler returns a reconciler using the mock function or a default one
// logging to the mock logger.
func (m *Mock) Reconciler(opts ...reconciler.Option) (reconciler.Reconciler, error) {
	if m.ReconcilerFunc != nil {
		return m.ReconcilerFunc(opts...)
	}
	opts = append([]reconciler.Option{reconciler.WithLogger(m.Logger())}, opts...)
	return reconciler.New(opts...)
}

// Store returns a store using the mock function or nil.
func (m *Mock) Store(ctx context.Context) (store.Store, error) {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx)
	}
	return nil, nil
}

// Locker returns a locker using the mock function or a no-op locker.
func (m *Mock) Locker(ctx context.Context) (lock.Locker, error) {
	if m.LockerFunc != nil {
		return m.LockerFunc(ctx)
	}
	return lock.Nop(), nil
}

// ApplyTimeout returns the timeout using the mock function or a minute.
func (m *Mock) ApplyTimeout() time.Duration {
	if m.ApplyTimeoutFunc != nil {
		return m.ApplyTimeoutFunc()
	}
	return time.Minute
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
