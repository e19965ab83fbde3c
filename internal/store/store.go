package store

import (
	"context"
	"fmt"

	"chat-messages/internal/config"
	"chat-messages/internal/repository"
	"chat-messages/internal/store/memstore"
	"chat-messages/internal/store/mongostore"
	"chat-messages/internal/store/pgstore"
	"chat-messages/pkg/database"
)

var (
	_ repository.MessageCollection = (*memstore.MessageCollection)(nil)
	_ repository.MessageCollection = (*mongostore.MessageCollection)(nil)
	_ repository.MessageCollection = (*pgstore.MessageCollection)(nil)
)

// Handle is an opened message collection plus the hooks to prepare and
// release its backing connection.
type Handle struct {
	Collection repository.MessageCollection
	Driver     string
	// Migrate creates indexes or tables. It is a no-op for the memory driver.
	Migrate func(ctx context.Context) error
	Close   func(ctx context.Context) error
}

// Open connects to the configured driver. The connection is process wide;
// callers must call Close at shutdown.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Handle, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		coll := mongostore.NewMessageCollection(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
		return &Handle{
			Collection: coll,
			Driver:     cfg.Driver,
			Migrate:    coll.EnsureIndexes,
			Close:      client.Disconnect,
		}, nil

	case config.DriverPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		coll := pgstore.NewMessageCollection(pool)
		return &Handle{
			Collection: coll,
			Driver:     cfg.Driver,
			Migrate:    coll.EnsureSchema,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMemory:
		return &Handle{
			Collection: memstore.NewMessageCollection(),
			Driver:     cfg.Driver,
			Migrate:    func(context.Context) error { return nil },
			Close:      func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
