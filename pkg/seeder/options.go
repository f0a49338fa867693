package seeder

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/lock"
)

// processLocker serializes applies within one process when no locker is
// configured.
var processLocker = lock.NewLocal()

type options struct {
	dryRun  bool
	timeout time.Duration
	locker  lock.Locker
	lockKey string
	logger  *zerolog.Logger
	ignored []string
}

func defaultOptions() *options {
	return &options{
		timeout: constants.ApplyTimeout,
		locker:  processLocker,
		lockKey: constants.ApplyLockKey,
	}
}

// Option configures a Seeder.
type Option func(*options)

// WithDryRun computes the changeset and rolls the transaction back.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithTimeout bounds an apply, lock wait included. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLocker sets the lock that serializes applies.
func WithLocker(l lock.Locker) Option {
	return func(o *options) {
		if l != nil {
			o.locker = l
		}
	}
}

// WithLockKey sets the lock key. Applies against different catalogs may
// use different keys.
func WithLockKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.lockKey = key
		}
	}
}

// WithLogger sets the logger. Without it the logger comes from the context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIgnoredFields leaves a stored record as it is when its only
// differences from the target are in these fields, so a value edited in
// the store, such as active, survives later applies.
func WithIgnoredFields(fields ...string) Option {
	return func(o *options) {
		o.ignored = append(o.ignored, fields...)
	}
}
