package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDB is a Repository backed by a shared Postgres god-stats
// database, for installs that point DATABASE_URL at the scraped data
// instead of the local SQLite seed.
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgresDB connects to Postgres and verifies the connection.
func NewPostgresDB(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

// Lookup returns the profile for a god by (possibly unnormalized) name.
func (p *PostgresDB) Lookup(ctx context.Context, name string) (*GodProfile, error) {
	var prof GodProfile
	var counters string
	err := p.pool.QueryRow(ctx, `
		SELECT name, role, win_rate, early_power, late_power, team_fight, counters, key_strength, key_weakness
		FROM gods WHERE key = $1`,
		NormalizeName(name),
	).Scan(&prof.Name, &prof.Role, &prof.WinRate, &prof.EarlyPower, &prof.LatePower, &prof.TeamFight, &counters, &prof.KeyStrength, &prof.KeyWeakness)

	if err == pgx.ErrNoRows {
		return nil, ErrGodNotFound
	}
	if err != nil {
		return nil, err
	}
	if counters != "" {
		prof.Counters = strings.Split(counters, ",")
	}
	return &prof, nil
}

// Pool exposes the underlying pool for maintenance queries.
func (p *PostgresDB) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the connection pool
func (p *PostgresDB) Close() error {
	p.pool.Close()
	return nil
}
