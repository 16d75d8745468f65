package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/iliyamo/filmorate/internal/catalog"
)

// migrationFS embeds the versioned schema files applied by Migrate.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationURL turns a DSN from DSN into the URL golang-migrate expects.
// Migration files hold several statements, so multiStatements is forced
// on for the migration connection only.
func MigrationURL(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return "mysql://" + dsn + sep + "multiStatements=true"
}

// Migrate applies schema migrations in the given direction ("up" or
// "down"). Being already at the target version is not an error.
func Migrate(dsn, direction string) error {
	if dsn == "" {
		return errors.New("migrate: empty DSN")
	}
	if direction != "up" && direction != "down" {
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, MigrationURL(dsn))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// SeedCatalog upserts the genre and MPA reference rows so the tables
// always match the compiled-in catalog.
func SeedCatalog(ctx context.Context, db *sql.DB, c *catalog.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, m := range c.MPAs() {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO mpa (id, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name)`,
			m.ID, m.Name); err != nil {
			return fmt.Errorf("seed mpa %d: %w", m.ID, err)
		}
	}
	for _, g := range c.Genres() {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO genres (id, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name)`,
			g.ID, g.Name); err != nil {
			return fmt.Errorf("seed genre %d: %w", g.ID, err)
		}
	}
	err = tx.Commit()
	return err
}
