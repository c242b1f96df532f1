// Package storage selects a core.Store implementation from a DSN.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/JonMunkholm/procspec/internal/storage/postgres"
	"github.com/JonMunkholm/procspec/internal/storage/sqlite"
)

// Options configures the Postgres pool; SQLite ignores it.
type Options = postgres.Options

// Backend names a storage driver.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

// Detect returns the backend for dsn and the address the driver expects.
//
//	postgres://... or postgresql://...   -> postgres, dsn unchanged
//	sqlite://path, sqlite:path           -> sqlite, path
//	file:path, *.db, *.sqlite, :memory:  -> sqlite, path
func Detect(dsn string) (Backend, string, error) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)

	switch {
	case dsn == "":
		return "", "", fmt.Errorf("empty database url")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return BackendPostgres, dsn, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return BackendSQLite, dsn[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "sqlite:"):
		return BackendSQLite, dsn[len("sqlite:"):], nil
	case strings.HasPrefix(lower, "file:"),
		lower == ":memory:",
		strings.HasSuffix(lower, ".db"),
		strings.HasSuffix(lower, ".sqlite"),
		strings.HasSuffix(lower, ".sqlite3"):
		return BackendSQLite, dsn, nil
	}
	return "", "", fmt.Errorf("unsupported database url %q: expected postgres:// or sqlite://", redact(dsn))
}

// Open connects to the store named by dsn.
func Open(ctx context.Context, dsn string, opts Options) (core.Store, error) {
	backend, addr, err := Detect(dsn)
	if err != nil {
		return nil, err
	}

	switch backend {
	case BackendPostgres:
		return postgres.Open(ctx, addr, opts)
	default:
		return sqlite.Open(ctx, addr)
	}
}

// redact hides credentials in a URL-like DSN.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
