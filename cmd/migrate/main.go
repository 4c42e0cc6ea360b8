package main

import (
	"FaceLiveness/database/migrations"
	"FaceLiveness/database/postgres"
	"FaceLiveness/pkg/log"
	"errors"
	"flag"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	"os"
)

func main() {
	var (
		dsn     = flag.String("dsn", "", "Database URL, defaults to the DB_* environment")
		up      = flag.Bool("up", false, "Run all up migrations")
		down    = flag.Bool("down", false, "Run all down migrations")
		steps   = flag.Int("steps", 0, "Number of migrations (positive=up, negative=down)")
		version = flag.Bool("version", false, "Print current migration version")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.NewLogger().Fatalf("Error loading .env file: %v", err)
	}
	logger := log.NewLogger()

	if *dsn == "" {
		*dsn = postgres.FormatURL()
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		logger.Fatalf("Failed to create migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		logger.Fatalf("Failed to create migrator: %v", err)
	}
	defer m.Close()

	switch {
	case *version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Fatalf("Failed to get version: %v", err)
		}
		logger.WithFields(log.Fields{"version": v, "dirty": dirty}).Info("Migration version")
	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalf("Failed to run up migrations: %v", err)
		}
		logger.Info("Migrations applied successfully")
	case *down:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalf("Failed to run down migrations: %v", err)
		}
		logger.Info("Migrations reverted successfully")
	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.WithField("steps", *steps).Info("Migration steps applied")
	default:
		flag.Usage()
	}
}
