// Package cli holds the bootstrap shared by the command line tools.
package cli

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/config"
	"github.com/pageza/recipedia/backend/internal/database"
	"github.com/pageza/recipedia/backend/internal/dataio"
	"github.com/pageza/recipedia/backend/internal/logging"
)

// OpenDatabase loads the configuration, sets up logging and returns a
// migrated database connection.
func OpenDatabase() (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// LogReports writes one summary line per table.
func LogReports(reports ...dataio.Report) {
	for _, r := range reports {
		logging.Info().
			Str("table", r.Table).
			Int("loaded", r.Loaded).
			Int("invalid", r.Invalid).
			Bool("skipped", r.Skipped).
			Msgf("loaded %d records", r.Loaded)
	}
}

// Fatal logs err and exits.
func Fatal(err error, msg string) {
	logging.Error().Err(err).Msg(msg)
	os.Exit(1)
}
