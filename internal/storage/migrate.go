package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateTo brings the schema of the database at path up to the requested
// version. Reconnecting at the persisted version is a no-op; requesting a
// version lower than the persisted one is refused, matching the engine's
// create-if-absent upgrade rule.
func migrateTo(path string, version uint) error {
	// Use a separate connection for migrations to avoid interfering with
	// the main connection
	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("%w: open migration connection: %v", ErrStorageUnavailable, err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("%w: create sqlite driver: %v", ErrStorageUnavailable, err)
	}

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: create iofs source: %v", ErrStorageUnavailable, err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("%w: create migrate instance: %v", ErrStorageUnavailable, err)
	}
	defer m.Close()

	current, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: read schema version: %v", ErrStorageUnavailable, err)
	}
	if dirty {
		return fmt.Errorf("%w: schema version %d is dirty", ErrStorageUnavailable, current)
	}
	if !errors.Is(err, migrate.ErrNilVersion) {
		if current == version {
			return nil
		}
		if current > version {
			return fmt.Errorf("%w: persisted schema version %d is newer than requested %d",
				ErrStorageUnavailable, current, version)
		}
	}

	if err := m.Migrate(version); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("%w: migrate to version %d: %v", ErrStorageUnavailable, version, err)
	}
	return nil
}
