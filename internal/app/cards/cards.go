/*
Package cards resolves the card sets games deal from.

Local card sets (positive ids) live in PostgreSQL; this package owns the connection
pool and the embedded schema migrations. Externally sourced sets (non-positive ids)
are resolved by the storage package instead.
*/
package cards

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"cardparty/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// CardSet describes one content pack a game can deal from.
type CardSet struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	BlackCount  int    `json:"blackCount"`
	WhiteCount  int    `json:"whiteCount"`
}

// Store provides read access to the local card-set tables.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens the connection pool, runs pending migrations and returns the store.
func NewStore(dsn string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// runMigrations applies all pending migrations from the embedded filesystem.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Card database migrations applied")
	return nil
}

// List returns every local card set, heaviest first.
func (s *Store) List(ctx context.Context) ([]CardSet, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, weight, black_count, white_count
		FROM card_sets
		ORDER BY weight DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card sets: %w", err)
	}
	defer rows.Close()

	var sets []CardSet
	for rows.Next() {
		var cs CardSet
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Weight, &cs.BlackCount, &cs.WhiteCount); err != nil {
			return nil, fmt.Errorf("failed to scan card set: %w", err)
		}
		sets = append(sets, cs)
	}

	return sets, rows.Err()
}

// ByIDs returns the card sets with the given local ids. Callers detect unknown ids
// by comparing lengths; the query itself does not fail on them.
func (s *Store) ByIDs(ctx context.Context, ids []int) ([]CardSet, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, weight, black_count, white_count
		FROM card_sets
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query card sets: %w", err)
	}
	defer rows.Close()

	var sets []CardSet
	for rows.Next() {
		var cs CardSet
		if err := rows.Scan(&cs.ID, &cs.Name, &cs.Description, &cs.Weight, &cs.BlackCount, &cs.WhiteCount); err != nil {
			return nil, fmt.Errorf("failed to scan card set: %w", err)
		}
		sets = append(sets, cs)
	}

	return sets, rows.Err()
}
