package backend

import (
	"context"
	"fmt"

	"financas/internal/log"
	"financas/internal/storage"
	"financas/internal/storage/memory"
)

// Factory opens stores and logs what it opened.
type Factory struct {
	logger *log.Logger
}

// NewFactory returns a factory logging through logger, or through the
// backend component logger when logger is nil.
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.ForComponent(log.ComponentBackend)
	}
	return &Factory{logger: logger}
}

// Open opens the store selected by c and checks that it answers. SQL
// backends are migrated on open.
func (f *Factory) Open(ctx context.Context, c Config) (*Opened, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch c.Type {
	case SQLite:
		store, err = storage.OpenSQLite(ctx, c.SQLitePath)
	case Postgres:
		store, err = storage.OpenPostgres(ctx, c.DatabaseURL)
	case Memory:
		store = memory.New()
		f.logger.Warn("Memory backend selected, data is lost on restart")
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Type, err)
	}

	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping %s store: %w", c.Type, err)
	}
	f.logger.InfoContext(ctx, "Store ready",
		append(log.NewFields().WithOperation(log.OpStartup).ToSlice(), "backend", string(c.Type))...)
	return &Opened{Store: store, Close: store.Close}, nil
}
