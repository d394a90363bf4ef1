package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/creator-dashboard-backend/config"
	"github.com/GoSim-25-26J-441/creator-dashboard-backend/internal/storage/postgres"
)

// Stores holds every backing connection the API and worker use.
// SQL serves the dashboard tables, Pool the time entries and migrations.
type Stores struct {
	SQL   *sqlx.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// OpenStores connects to Postgres twice (lib/pq and pgx) and to Redis when
// withRedis is set. Whatever opened is closed again on failure.
func OpenStores(ctx context.Context, cfg *config.Config, withRedis bool) (*Stores, error) {
	s := &Stores{}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	s.SQL = sqlDB

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Pool = pool

	if withRedis {
		rdb, err := OpenRedis(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Redis = rdb
	}
	return s, nil
}

func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *Stores) Close() {
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.SQL != nil {
		_ = s.SQL.Close()
	}
}
