package container

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/salon-connect/internal/infrastructure/postgres"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// OpenStore connects the backend selected by cfg.StoreDriver, registers its
// repositories and returns a func releasing the connections.
func OpenStore(ctx context.Context, c *config.Config, l *logrus.Logger, runMigrations bool) (func(), error) {
	switch c.StoreDriver {
	case DriverPostgres, "":
		if runMigrations {
			if err := pginfra.RunMigrations(c.PostgresDSN(), c.MigrationsDir, l); err != nil {
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}
		pool, err := pginfra.NewPool(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		SetRepositories(pginfra.NewUserRepository(pool), pginfra.NewSalonRepository(pool))
		return pool.Close, nil

	case DriverMongo:
		client, err := mongodb.NewClient(ctx, c.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		db := client.Database(c.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to ensure mongo indexes: %w", err)
		}
		SetRepositories(
			mongodb.NewUserRepository(client, db, c.MongoTransactions),
			mongodb.NewSalonRepository(db),
		)
		return func() { _ = client.Disconnect(context.Background()) }, nil

	case DriverMemory:
		l.Warn("using in-memory store; data is lost on restart")
		SetRepositories(memory.NewUserRepository(), memory.NewSalonRepository())
		return func() {}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
}
