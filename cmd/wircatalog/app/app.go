// Package app provides the application context and dependency management
// for the wircatalog CLI: configuration, logging, and the lazily opened
// store and locker shared by every command.
package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/cmd/application"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/store/memory"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/store/mysql"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/internal/store/sqlite"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/batch"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/lock"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/logging"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/reconciler"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/store"
)

// App represents the wircatalog application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	viper       *viper.Viper
	config      *Config
	fixedConfig bool
	fixedLogger bool

	// Logger
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer

	// Lazily opened resources
	mu     sync.Mutex
	store  store.Store
	locker lock.Locker
	redis  *redis.Client
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		viper:   newViper(),
	}

	if err := readConfigFile(app.viper, app.viper.GetString("config")); err != nil {
		return nil, err
	}
	config, err := configFromViper(app.viper)
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// ApplyTimeout bounds a single apply transaction.
func (a *App) ApplyTimeout() time.Duration {
	return a.config.ApplyTimeout
}

// Batches loads the embedded batches and those in the batch directory,
// in precedence order.
func (a *App) Batches() ([]*batch.Batch, error) {
	var batches []*batch.Batch
	if a.config.Embedded {
		embedded, err := batch.Embedded()
		if err != nil {
			return nil, err
		}
		batches = append(batches, embedded...)
	}
	if a.config.BatchDir != "" {
		dir, err := batch.LoadDir(a.config.BatchDir)
		if err != nil {
			return nil, err
		}
		batches = append(batches, dir...)
	}
	if len(batches) == 0 {
		return nil, errors.NewConfigError("batch_dir", "no batches found", nil)
	}
	batch.Sort(batches)
	return batches, nil
}

// Reconciler returns a reconciler honoring the strict setting.
func (a *App) Reconciler(opts ...reconciler.Option) (reconciler.Reconciler, error) {
	base := []reconciler.Option{
		reconciler.WithLogger(a.logger),
		reconciler.WithStrict(a.config.Strict),
	}
	return reconciler.New(append(base, opts...)...)
}

// Store opens the configured store on first use.
func (a *App) Store(ctx context.Context) (store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}

	ctx = logging.WithLogger(ctx, a.logger)
	var (
		s   store.Store
		err error
	)
	switch a.config.Store {
	case StoreMemory:
		s = memory.New()
	case StoreMySQL:
		s, err = mysql.Open(ctx, a.config.DSN, mysql.WithLockKey(constants.ApplyLockKey))
	default:
		s, err = sqlite.Open(ctx, a.config.DSN)
	}
	if err != nil {
		return nil, errors.WrapResource("open", "store", a.config.Store, err)
	}

	a.logger.Debug().Str("store", a.config.Store).Msg("Opened store")
	a.store = s
	return s, nil
}

// Locker returns the configured locker. The redis locker dials on first use.
func (a *App) Locker(ctx context.Context) (lock.Locker, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.locker != nil {
		return a.locker, nil
	}

	switch a.config.Lock {
	case LockRedis:
		client, err := lock.Dial(ctx, a.config.RedisAddr, a.config.RedisPassword, a.config.RedisDB)
		if err != nil {
			return nil, errors.WrapResource("connect", "redis", a.config.RedisAddr, err)
		}
		a.redis = client
		a.locker = lock.NewRedis(client, lock.RedisOptions{
			TTL:  a.config.LockTTL,
			Wait: a.config.ApplyTimeout,
		})
	default:
		a.locker = lock.NewLocal()
	}
	return a.locker, nil
}

// Shutdown closes the store and the redis connection if they were opened.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
		a.store = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
		a.redis = nil
	}
	a.locker = nil
	return errors.Join(errs...)
}

// reload rebuilds the configuration and logger after flags are parsed.
func (a *App) reload() error {
	if !a.fixedConfig {
		if err := a.reloadConfig(); err != nil {
			return err
		}
	}
	if !a.fixedLogger {
		logger := NewLogger(a.config)
		a.logger = &logger
	}
	return nil
}

func (a *App) reloadConfig() error {
	if file := a.viper.GetString("config"); file != "" && file != a.viper.ConfigFileUsed() {
		if err := readConfigFile(a.viper, file); err != nil {
			return err
		}
	}
	config, err := configFromViper(a.viper)
	if err != nil {
		return err
	}
	a.config = config
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		a.fixedConfig = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.fixedLogger = true
		return nil
	}
}

// WithStore sets the store instead of opening one from the config.
func WithStore(s store.Store) Option {
	return func(a *App) error {
		a.store = s
		return nil
	}
}

// WithOutput sets where commands write their output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
