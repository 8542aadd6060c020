package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded postgres migrations
type Migrator struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(pool *pgxpool.Pool, logger *log.Logger) *Migrator {
	return &Migrator{pool: pool, logger: logger}
}

// Up runs all pending migrations, each inside its own transaction
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	files, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}

	for _, name := range files {
		// Version is the numeric prefix, e.g. "001" from "001_create_collection_entries.up.sql"
		version := strings.SplitN(name, "_", 2)[0]

		applied, err := m.isMigrationApplied(ctx, version)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		m.logger.Printf("Applying migration: %s", name)
		err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	m.logger.Println("All migrations applied")
	return nil
}

// Down rolls back the last applied migration
func (m *Migrator) Down(ctx context.Context) error {
	var version string
	err := m.pool.QueryRow(ctx, `
		SELECT version FROM schema_migrations
		ORDER BY version DESC
		LIMIT 1
	`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to get last migration: %w", err)
	}

	files, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}

	var downFile string
	for _, name := range files {
		if strings.HasPrefix(name, version+"_") {
			downFile = name
			break
		}
	}
	if downFile == "" {
		return fmt.Errorf("down migration file not found for version %s", version)
	}

	content, err := migrationsFS.ReadFile("migrations/" + downFile)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", downFile, err)
	}

	m.logger.Printf("Rolling back migration: %s", downFile)
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", downFile, err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
}

// migrationFiles lists embedded migration files with the given suffix in version order
func migrationFiles(suffix string) ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW() NOT NULL
		)
	`)
	return err
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists)
	return exists, err
}
