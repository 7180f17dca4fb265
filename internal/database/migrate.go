package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/logging"
	"github.com/pageza/recipedia/backend/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RunMigrations brings the schema up to date. SQLite databases are
// auto-migrated from the models; PostgreSQL uses the goose migrations.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() == "sqlite" {
		logging.Debug().Msg("using gorm auto-migration for sqlite")
		return db.AutoMigrate(models.All()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return MigratePostgres(sqlDB)
}

// MigratePostgres applies the embedded goose migrations.
func MigratePostgres(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// RollbackPostgres reverts the most recent migration.
func RollbackPostgres(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	return goose.Down(db, "migrations")
}
