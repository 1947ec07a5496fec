package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/salon-call-agent/internal/appointments"
	"github.com/wolfman30/salon-call-agent/pkg/logging"
)

// ConnectPostgres opens a pool for databaseURL, or returns nil when the URL
// is empty or the database cannot be reached.
func ConnectPostgres(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	databaseURL = strings.TrimSpace(databaseURL)
	if databaseURL == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildRepository picks the Postgres repository when a pool is available.
func BuildRepository(pool *pgxpool.Pool, logger *logging.Logger) appointments.Repository {
	if pool == nil {
		if logger != nil {
			logger.Warn("no database configured, appointments are kept in memory")
		}
		return appointments.NewInMemoryRepository()
	}
	return appointments.NewPostgresRepository(pool)
}
