package cli

import (
	"log/slog"

	"github.com/aretw0/portflow/internal/logging"
)

// Store backends accepted by --store.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Options carries the persistent flags shared by every command.
type Options struct {
	File       string // definition file (YAML or JSON)
	Network    string // stored network name, used when File is empty
	Debug      bool
	Store      string // file, sqlite, redis or memory
	StoreDir   string
	SQLitePath string
	RedisAddr  string

	// Redact lists metadata key patterns masked before saving.
	Redact []string
	// EncryptionKey is a base64 AES-256 key encrypting stored metadata.
	EncryptionKey string
}

// EncryptionKeyEnv names the environment variable holding EncryptionKey.
const EncryptionKeyEnv = "PORTFLOW_ENCRYPTION_KEY"

// Source names where the definition comes from, for messages.
func (o Options) Source() string {
	if o.File != "" {
		return o.File
	}
	return o.Store + ":" + o.Network
}

// NewLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout output).
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}
