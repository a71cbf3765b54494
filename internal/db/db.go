package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"kisansense/migrations"
)

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

// Ping checks the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevMessages inserts sample contact messages for development when the
// table is empty.
func (d *DB) SeedDevMessages(ctx context.Context) error {
	var count int
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}
	if count > 0 {
		return nil
	}

	messages := []struct {
		name    string
		village string
		lang    string
		message string
	}{
		{"Ramesh", "Guntur", "te", "Aphids on my chilli crop, neem oil not working"},
		{"Sunita", "Nashik", "mr", "When is the next PM-Kisan installment?"},
		{"Arjun", "Madurai", "ta", "Need soil testing for 3 acres"},
	}

	query := `
		INSERT INTO contact_messages (name, village, language, message)
		VALUES ($1, $2, $3, $4)
	`

	for _, m := range messages {
		if _, err := d.Pool.Exec(ctx, query, m.name, m.village, m.lang, m.message); err != nil {
			return fmt.Errorf("failed to seed message from %s: %w", m.name, err)
		}
	}

	return nil
}
