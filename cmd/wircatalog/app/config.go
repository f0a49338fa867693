package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files and ~/.wircatalog.yaml.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Batches
	BatchDir string
	Embedded bool
	Strict   bool

	// Store
	Store string
	DSN   string

	// Serialization
	Lock          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LockTTL       time.Duration
	ApplyTimeout  time.Duration

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound by the root command)
// 2. Environment variables (WIRCATALOG_ prefix)
// 3. .env files
// 4. Config file (~/.wircatalog.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	v := newViper()
	if err := readConfigFile(v, ""); err != nil {
		return nil, err
	}
	return configFromViper(v)
}

func newViper() *viper.Viper {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix("WIRCATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// readConfigFile reads file, or searches for .wircatalog.yaml in the home
// and working directories when file is empty. A missing file is not an error.
func readConfigFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".wircatalog")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return errors.NewConfigError("config", "failed to read config file", err)
		}
	}
	return nil
}

func configFromViper(v *viper.Viper) (*Config, error) {
	config := &Config{
		Verbose:    v.GetBool("verbose"),
		Quiet:      v.GetBool("quiet"),
		NoColor:    v.GetBool("no_color"),
		Format:     v.GetString("format"),
		ConfigFile: v.ConfigFileUsed(),

		BatchDir: v.GetString("batch_dir"),
		Embedded: v.GetBool("embedded"),
		Strict:   v.GetBool("strict"),

		Store: strings.ToLower(v.GetString("store")),
		DSN:   v.GetString("dsn"),

		Lock:          strings.ToLower(v.GetString("lock")),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		LockTTL:       v.GetDuration("lock_ttl"),
		ApplyTimeout:  v.GetDuration("apply_timeout"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", StoreSQLite)
	v.SetDefault("dsn", "wircatalog.db")
	v.SetDefault("embedded", true)
	v.SetDefault("lock", LockLocal)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("lock_ttl", constants.LockTTL)
	v.SetDefault("apply_timeout", constants.ApplyTimeout)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks the backend selections.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMySQL, StoreMemory:
	default:
		return errors.NewConfigError("store", "must be one of sqlite, mysql, memory, got "+c.Store, nil)
	}
	if c.Store == StoreMySQL && c.DSN == "" {
		return errors.NewConfigError("dsn", "required for the mysql store", nil)
	}
	switch c.Lock {
	case LockLocal, LockRedis:
	default:
		return errors.NewConfigError("lock", "must be one of local, redis, got "+c.Lock, nil)
	}
	if !c.Embedded && c.BatchDir == "" {
		return errors.NewConfigError("batch_dir", "required when embedded batches are disabled", nil)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
