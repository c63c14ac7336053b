package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultMigrationsDir is where cmd/migrate looks for *.up.sql files.
const DefaultMigrationsDir = "database/migrations"

// ORA-00955: name is already used by an existing object.
const oraObjectExists = "ORA-00955"

// RunMigrations executes every *.up.sql file in dir in lexical order. Each
// file holds a single statement. Objects that already exist are skipped, so
// the command can be re-run against a migrated schema.
func RunMigrations(ctx context.Context, db *sqlx.DB, fs afero.Fs, dir string, logger *zap.Logger) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, fmt.Errorf("could not read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	applied := 0
	for _, name := range names {
		content, err := afero.ReadFile(fs, filepath.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if strings.Contains(err.Error(), oraObjectExists) {
				logger.Info("Migration already applied", zap.String("file", name))
				continue
			}
			return applied, fmt.Errorf("could not execute migration %s: %w", name, err)
		}

		applied++
		logger.Info("Executed migration", zap.String("file", name))
	}

	logger.Info("Migrations completed successfully", zap.Int("applied", applied))
	return applied, nil
}
