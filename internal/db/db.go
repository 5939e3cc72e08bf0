package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsreview/migrations"
)

// psql builds statements with Postgres $n placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevData inserts sample submissions and newsletters for development.
// Does nothing if either table already has rows.
func (d *DB) SeedDevData(ctx context.Context) error {
	var count int
	if err := d.Pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM newsletter_submissions) + (SELECT COUNT(*) FROM newsletters)
	`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count seed rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	published := []struct {
		title      string
		categories []string
	}{
		{"Import AI", []string{"ai", "tech"}},
		{"Money Stuff", []string{"finance"}},
		{"TLDR", []string{"tech", "startups"}},
		{"The Batch", []string{"ai", "education"}},
	}
	for _, p := range published {
		if _, err := d.Pool.Exec(ctx, `
			INSERT INTO newsletters (title, categories, slug, url)
			VALUES ($1, $2, lower(replace($1, ' ', '-')), 'https://example.com')
		`, p.title, p.categories); err != nil {
			return fmt.Errorf("failed to seed newsletter %s: %w", p.title, err)
		}
	}

	submissions := []struct {
		title       string
		description string
		pricing     string
		frequency   string
		categories  []string
	}{
		{"Deep Learning Digest", "Weekly roundup of ML papers.\nWritten by practitioners.", "FREE", "weekly", []string{"AI", "Tech"}},
		{"Indie Hackers Weekly", "Stories from bootstrapped founders.", "FREEMIUM", "weekly", []string{"startups"}},
		{"Market Open", "Pre-market briefing every weekday.", "PAID", "daily", []string{"finance"}},
	}
	for _, s := range submissions {
		if _, err := d.Pool.Exec(ctx, `
			INSERT INTO newsletter_submissions (title, description, pricing, frequency, categories, url, submitter_name, submitter_email)
			VALUES ($1, $2, $3, $4, $5, 'https://example.com', 'Dev Seed', 'seed@example.com')
		`, s.title, s.description, s.pricing, s.frequency, s.categories); err != nil {
			return fmt.Errorf("failed to seed submission %s: %w", s.title, err)
		}
	}

	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
