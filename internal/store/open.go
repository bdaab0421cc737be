package store

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
)

// Options selects and locates a backend.
type Options struct {
	Backend       string
	DatabaseURL   string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string
}

// Backend is an opened store together with its lifecycle hooks.
type Backend struct {
	Store
	Name  string
	close func(ctx context.Context) error
}

// Ping reports liveness when the backend supports it.
func (b *Backend) Ping(ctx context.Context) error {
	if p, ok := b.Store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the backend's connections.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects the configured backend and prepares its schema.
func Open(ctx context.Context, opts Options) (*Backend, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return &Backend{Store: NewMemory(), Name: BackendMemory}, nil
	case BackendPostgres, BackendSQLite:
		var (
			db  *DB
			err error
		)
		if opts.Backend == BackendPostgres {
			db, err = NewDB(opts.DatabaseURL)
		} else {
			db, err = NewSQLite(opts.SQLitePath)
		}
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open %s: %w", opts.Backend, err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate %s: %w", opts.Backend, err)
		}
		return &Backend{
			Store: db,
			Name:  opts.Backend,
			close: func(context.Context) error { return db.Close() },
		}, nil
	case BackendMongo:
		m, err := NewMongo(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return &Backend{Store: m, Name: BackendMongo, close: m.Close}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
}
