package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pkg/errors"
)

// Migration files live in store/migration/{driver}/LATEST.sql and hold the full
// schema for fresh installations. Statements use IF NOT EXISTS so re-applying
// them is harmless.

//go:embed migration
var migrationFS embed.FS

// LatestSchemaFileName is the name of the latest schema file.
const LatestSchemaFileName = "LATEST.sql"

// Migrate applies the latest schema when the database is not initialized yet.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}
	if initialized {
		slog.Debug("database already initialized", slog.String("driver", s.profile.Driver))
		return nil
	}

	schema, err := latestSchema(s.profile.Driver)
	if err != nil {
		return err
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return errors.Wrapf(err, "failed to apply %s schema", s.profile.Driver)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit schema")
	}

	slog.Info("database schema applied", slog.String("driver", s.profile.Driver))
	return nil
}

func latestSchema(driver string) (string, error) {
	path := filepath.ToSlash(filepath.Join("migration", driver, LatestSchemaFileName))
	buf, err := migrationFS.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, fmt.Sprintf("no schema for driver %q", driver))
	}
	return string(buf), nil
}
