package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/demo"
	"github.com/mrlokans/bookstore/internal/store"
)

// SeedDemoCommand creates the bookstore schema and loads the demo rows.
type SeedDemoCommand struct {
	Database config.Database
	Out      io.Writer
}

func NewSeedDemoCommand(cfg config.Database) *SeedDemoCommand {
	return &SeedDemoCommand{Database: cfg, Out: os.Stdout}
}

func (cmd *SeedDemoCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ContinueOnError)
	bindDatabaseFlags(fs, &cmd.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-demo [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the bookstore tables and fill them with demo data.\n")
		fmt.Fprintf(os.Stderr, "Tables that already hold an admin are left untouched.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *SeedDemoCommand) Run() error {
	db, err := store.Open(cmd.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := demo.Seed(context.Background(), db); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Demo data ready in %s database\n", cmd.Database.Driver)
	return nil
}
