package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/catalogs"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	logger        *zerolog.Logger
	strict        bool
	knownWIRCodes []string
}

func defaultOptions() *options {
	return &options{}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithLogger sets the logger. Without it the logger is taken from the
// context passed to Reconcile.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}

// WithStrict turns recoverable anomalies into errors: an id whose business
// key changes between batches, and ids that do not follow the partitioning
// convention.
func WithStrict(strict bool) Option {
	return func(o *options) error {
		o.strict = strict
		return nil
	}
}

// WithKnownWIRCodes adds stage codes that records may reference in
// addition to the WIR masters declared by the batches, for stages that
// already exist in the store.
func WithKnownWIRCodes(codes ...string) Option {
	return func(o *options) error {
		for _, code := range codes {
			if !catalogs.IsWIRCode(code) {
				return &errors.ValidationError{
					Field:   "known_wir_codes",
					Value:   code,
					Message: "not a WIR code",
				}
			}
		}
		o.knownWIRCodes = append(o.knownWIRCodes, codes...)
		return nil
	}
}
