package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/config"
)

// TablesCommand prints every managed table with its row count and columns.
type TablesCommand struct {
	Database config.Database
	Out      io.Writer
}

func NewTablesCommand(cfg config.Database) *TablesCommand {
	return &TablesCommand{Database: cfg, Out: os.Stdout}
}

func (cmd *TablesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("tables", flag.ContinueOnError)
	bindDatabaseFlags(fs, &cmd.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s tables [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List the bookstore tables with their row counts and columns.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *TablesCommand) Run() error {
	s, err := openStore(cmd.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS\tCOLUMNS")

	for _, entity := range catalog.Entities() {
		cols, err := s.Columns(ctx, entity.Table)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\terror: %v\n", entity.Table, err)
			continue
		}
		count, err := s.Count(ctx, entity.Table)
		if err != nil {
			return fmt.Errorf("count %s: %w", entity.Table, err)
		}

		names := make([]string, len(cols))
		for i, c := range cols {
			names[i] = c.Name
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", entity.Table, count, strings.Join(names, ", "))
	}

	return w.Flush()
}
