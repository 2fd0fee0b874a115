// Package migrations provides database migrations using gormigrate.
package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// options keeps the bookkeeping table apart from the analytics tables and
// applies each migration in its own transaction.
var options = &gormigrate.Options{
	TableName:                 "schema_migrations",
	IDColumnName:              "id",
	IDColumnSize:              255,
	UseTransaction:            true,
	ValidateUnknownMigrations: true,
}

// Migrations returns all database migrations in apply order.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createAnalysisRunsTable(),
		createPostMetricsTable(),
	}
}

// Run applies all pending migrations.
func Run(db *gorm.DB) error {
	if err := gormigrate.New(db, options, Migrations()).Migrate(); err != nil {
		return fmt.Errorf("migrating analytics schema: %w", err)
	}

	return nil
}

// RollbackTo reverts every migration applied after id.
func RollbackTo(db *gorm.DB, id string) error {
	if err := gormigrate.New(db, options, Migrations()).RollbackTo(id); err != nil {
		return fmt.Errorf("rolling back to %s: %w", id, err)
	}

	return nil
}
