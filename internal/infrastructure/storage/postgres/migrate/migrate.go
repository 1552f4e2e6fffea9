// Package migrate applies the bundled schema (the prefix registry) with
// golang-migrate over an existing pgx pool.
package migrate

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable keeps our version row apart from the host application's
// own schema_migrations.
const MigrationsTable = "docserial_schema_migrations"

// Up applies all pending migrations. ErrNoChange is not an error.
func Up(pool *pgxpool.Pool) error {
	return run(pool, func(m *migrate.Migrate) error { return m.Up() })
}

// Down reverts every applied migration.
func Down(pool *pgxpool.Pool) error {
	return run(pool, func(m *migrate.Migrate) error { return m.Down() })
}

// Version returns the current migration version.
// A fresh database reports version 0 and no error.
func Version(pool *pgxpool.Pool) (version uint, dirty bool, err error) {
	err = run(pool, func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		return err
	})
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func run(pool *pgxpool.Pool, fn func(m *migrate.Migrate) error) (err error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migration source: %w", err)
	}

	// Closing db leaves the pool open.
	db := stdlib.OpenDBFromPool(pool)

	databaseDriver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", databaseDriver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := fn(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
