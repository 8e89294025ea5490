// Package backend selects and opens the persistence backend named in the
// configuration.
package backend

import (
	"errors"
	"fmt"

	"financas/internal/config"
	"financas/internal/storage"
)

// Type names a storage backend.
type Type string

const (
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
	Memory   Type = "memory"
)

// Types lists the supported backends in order of preference.
var Types = []Type{SQLite, Postgres, Memory}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Config says which backend to open and where it lives. Only the field
// matching Type is read.
type Config struct {
	Type        Type
	SQLitePath  string
	DatabaseURL string
}

// FromAppConfig extracts the backend settings from the application config.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("backend: nil config")
	}
	c := Config{
		Type:        Type(cfg.DataBackend),
		SQLitePath:  cfg.SQLiteDBPath,
		DatabaseURL: cfg.DatabaseURL,
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Type {
	case SQLite:
		if c.SQLitePath == "" {
			return errors.New("backend: sqlite needs a database path")
		}
	case Postgres:
		if c.DatabaseURL == "" {
			return errors.New("backend: postgres needs a database URL")
		}
	case Memory:
	default:
		return fmt.Errorf("backend: unknown type %q (want one of %v)", c.Type, Types)
	}
	return nil
}

// Migration returns the dialect and DSN to migrate. The memory backend
// keeps no schema and reports ok=false.
func (c Config) Migration() (dialect storage.Dialect, dsn string, ok bool) {
	switch c.Type {
	case SQLite:
		return storage.DialectSQLite, c.SQLitePath, true
	case Postgres:
		return storage.DialectPostgres, c.DatabaseURL, true
	}
	return "", "", false
}

// Opened is an open store and the function that releases it.
type Opened struct {
	Store storage.Store
	Close func() error
}
