// Package store implements the wallet's single-file embedded relational
// database (spec 4.2), grounded on internal/database/postgres.go's
// connection/migration lifecycle, but backed by modernc.org/sqlite instead
// of Postgres (see DESIGN.md "Teacher deps dropped") and migrated with
// golang-migrate's embedded iofs source instead of an on-disk migrations/
// directory, so the library has no external files to ship.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Store wraps the single on-disk sqlite file backing the wallet.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the sqlite file at path and runs any
// pending migrations, mirroring internal/database/postgres.go's
// NewDB+RunMigrations pairing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open sqlite database", zap.Error(err))
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}
	// A single-file sqlite database is not meant to be hammered with
	// concurrent writers; cap the pool so writes serialize instead of
	// returning SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("sqlite database ping failed", zap.Error(err))
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened wallet store", zap.String("path", path))
	return s, nil
}

// runMigrations applies every pending migration embedded in this binary,
// tracking the applied version in golang-migrate's schema_migrations table
// (the sqlite driver's default), where the original crate's
// rusqlite_migration gates on sqlite's user_version pragma instead.
func (s *Store) runMigrations() error {
	sourceDriver, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	dbDriver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	logger.Info("running wallet store migrations")
	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			logger.Info("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("wallet store is in a dirty state at version %d", version)
	}

	logger.Info("wallet store migrations complete", zap.Uint("version", version))
	return nil
}

// Ping checks that the underlying sqlite file is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying sqlite connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	logger.Info("closing wallet store", zap.String("path", s.path))
	return s.db.Close()
}
