package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrateUp applies all pending schema migrations from sourcePath
// (e.g. "file://migrations"). An already up-to-date schema is not an error.
func MigrateUp(dsn, sourcePath string) error {
	const op = "postgres.MigrateUp"

	m, err := migrate.New(sourcePath, dsn)
	if err != nil {
		return fmt.Errorf("%s: new: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}
	return nil
}
