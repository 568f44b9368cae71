package cli

import (
	"flag"
	"fmt"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/store"
)

// bindDatabaseFlags lets a command point at another database than the
// one configured through the environment.
func bindDatabaseFlags(fs *flag.FlagSet, cfg *config.Database) {
	fs.StringVar(&cfg.Driver, "driver", cfg.Driver, "Database driver: mysql, postgres or sqlite")
	fs.StringVar(&cfg.Path, "db", cfg.Path, "SQLite database file (sqlite driver only)")
}

func openStore(cfg config.Database) (*store.Store, error) {
	db, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.New(db, cfg.QueryTimeout)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize record store: %w", err)
	}
	return s, nil
}
