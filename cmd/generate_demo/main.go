// Command generate_demo creates a SQLite bookstore database filled with demo data.
// Usage: go run cmd/generate_demo/main.go [-db path/to/bookstore.db]
package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/demo"
	"github.com/mrlokans/bookstore/internal/logging"
	"github.com/mrlokans/bookstore/internal/store"
)

const defaultDemoDatabasePath = "./demo/bookstore.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	logging.Setup(config.Logging{Level: "info", Format: "console"})
	log.Info().Str("path", *dbPath).Msg("generating demo database")

	// Start fresh so the ids match the demo dataset
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatal().Err(err).Msg("failed to remove existing demo database")
	}
	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create demo directory")
	}

	db, err := store.Open(config.Database{Driver: config.DriverSQLite, Path: *dbPath})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create database")
	}
	defer db.Close()

	if err := demo.Seed(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed demo database")
	}

	for _, table := range demo.Dataset {
		log.Info().Str("table", table.Name).Int("rows", len(table.Rows)).Msg("ready")
	}
	log.Info().Msg("demo database generated, sign in with admin / admin")
}
