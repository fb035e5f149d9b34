package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/salon-connect/config"
)

const pingTimeout = 5 * time.Second

// NewPool opens the pgx pool backing the user and salon repositories and
// fails fast when the database cannot be reached.
func NewPool(ctx context.Context, c *config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(c.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pc.MaxConns = c.DBMaxConns
	pc.MinConns = c.DBMinConns
	pc.MaxConnLifetime = c.DBMaxConnLife
	pc.ConnConfig.RuntimeParams["application_name"] = c.AppName

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s:%s: %w", c.DBHost, c.DBPort, err)
	}
	return pool, nil
}
