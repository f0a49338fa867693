// Package constants provides shared constants used throughout the wircatalog codebase.
// This includes timeouts, lock settings, file permissions, and other configuration
// values that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// ApplyTimeout bounds a single apply transaction, lock wait included
	ApplyTimeout = 2 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second

	// StoreBusyTimeout is the SQLite busy_timeout in milliseconds
	StoreBusyTimeout = 5000
)

// Lock constants configure the apply serialization point
const (
	// ApplyLockKey is the advisory lock key shared by every apply of one catalog
	ApplyLockKey = "wircatalog:apply"

	// LockTTL is how long a redis lock is held before it expires on its own
	LockTTL = 30 * time.Second

	// LockRetryInterval is the wait between attempts to obtain a busy lock
	LockRetryInterval = 250 * time.Millisecond

	// MySQLLockWaitSeconds is the GET_LOCK wait in seconds
	MySQLLockWaitSeconds = 30
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// MaxNameLength is the maximum allowed length for names and codes
	MaxNameLength = 256

	// MaxDescriptionLength is the maximum allowed length for descriptions
	MaxDescriptionLength = 4096

	// UpsertBatchSize is the number of rows written per upsert statement group
	UpsertBatchSize = 200
)

// Batch file constants
const (
	// BatchFileExt is the preferred extension for seed batch files
	BatchFileExt = ".yaml"

	// BatchFileAltExt is the alternative extension accepted for seed batch files
	BatchFileAltExt = ".yml"
)
