package benchmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema expected by the Postgres provider:
//
//	CREATE TABLE IF NOT EXISTS industry_benchmarks (
//	  sector     TEXT NOT NULL,
//	  metric_key TEXT NOT NULL,
//	  value      DOUBLE PRECISION NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
//	  PRIMARY KEY (sector, metric_key)
//	);
const (
	batchQuery  = `SELECT metric_key, value FROM industry_benchmarks WHERE sector = $1 AND metric_key = ANY($2)`
	singleQuery = `SELECT value FROM industry_benchmarks WHERE sector = $1 AND metric_key = $2`
)

// querier is the subset of *pgxpool.Pool the provider needs
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads sector benchmarks from the industry_benchmarks table
type Postgres struct {
	db querier
}

// NewPostgres wraps an open pool
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool}
}

// ConnectPostgres opens a pool for databaseURL and verifies it with a ping
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("benchmark database url not set")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping benchmark database: %w", err)
	}
	return pool, nil
}

// Benchmark implements Provider
func (p *Postgres) Benchmark(ctx context.Context, key, sector string) (float64, error) {
	sector = NormalizeSector(sector)
	var v float64
	err := p.db.QueryRow(ctx, singleQuery, sector, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s/%s: %w", sector, key, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load benchmark %s/%s: %w", sector, key, err)
	}
	return v, nil
}

// Benchmarks implements BatchProvider with a single query per run
func (p *Postgres) Benchmarks(ctx context.Context, sector string, keys []string) (map[string]float64, error) {
	sector = NormalizeSector(sector)
	rows, err := p.db.Query(ctx, batchQuery, sector, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmarks for %s: %w", sector, err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(keys))
	for rows.Next() {
		var (
			key string
			v   float64
		)
		if err := rows.Scan(&key, &v); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark row: %w", err)
		}
		out[key] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read benchmarks for %s: %w", sector, err)
	}
	return out, nil
}
