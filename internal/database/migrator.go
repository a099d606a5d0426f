package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Migrator applies the *.sql files of a filesystem in name order, once each
type Migrator struct {
	pool *pgxpool.Pool
	fsys fs.FS
	dir  string
}

// NewMigratorWithFS creates a migration runner reading dir inside fsys
func NewMigratorWithFS(pool *pgxpool.Pool, fsys fs.FS, dir string) *Migrator {
	return &Migrator{
		pool: pool,
		fsys: fsys,
		dir:  dir,
	}
}

// PendingMigrations lists the migration files in execution order, skipping
// reset scripts
func PendingMigrations(fsys fs.FS, dir string, applied map[string]bool) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		if strings.Contains(name, "reset") || applied[name] {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// RunMigrations executes all pending database migrations. Each file runs in
// its own transaction together with its bookkeeping row.
func (m *Migrator) RunMigrations(ctx context.Context) error {
	log := zap.L().Named("migrations")

	if err := m.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	pending, err := PendingMigrations(m.fsys, m.dir, applied)
	if err != nil {
		return err
	}

	for _, filename := range pending {
		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		log.Info("running migration", zap.String("file", filename))
		err = pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(content)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO schema_migrations (filename) VALUES ($1) ON CONFLICT (filename) DO NOTHING`, filename)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", filename, err)
		}
	}

	if len(pending) > 0 {
		log.Info("migrations applied", zap.Int("count", len(pending)))
	} else {
		log.Info("database is up to date")
	}
	return nil
}

func (m *Migrator) createMigrationsTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (m *Migrator) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := m.pool.Query(ctx, "SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			return nil, err
		}
		applied[filename] = true
	}

	return applied, rows.Err()
}
