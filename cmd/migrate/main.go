package main

import (
	"database/sql"
	"flag"
	"os"

	_ "github.com/lib/pq"

	"github.com/pageza/recipedia/backend/config"
	"github.com/pageza/recipedia/backend/internal/database"
	"github.com/pageza/recipedia/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logging.Error().Err(err).Msg("failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if *rollback {
		err = database.RollbackPostgres(db)
	} else {
		err = database.MigratePostgres(db)
	}
	if err != nil {
		logging.Error().Err(err).Bool("rollback", *rollback).Msg("migration failed")
		os.Exit(1)
	}
	logging.Info().Bool("rollback", *rollback).Msg("migrations complete")
}
