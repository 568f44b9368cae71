package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iancoleman/strcase"

	"github.com/mrlokans/bookstore/internal/config"
)

// DumpCommand prints the grid of one table.
type DumpCommand struct {
	Table    string
	Database config.Database
	Out      io.Writer
}

func NewDumpCommand(cfg config.Database) *DumpCommand {
	return &DumpCommand{Database: cfg, Out: os.Stdout}
}

func (cmd *DumpCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.StringVar(&cmd.Table, "table", "", "Table to print (required)")
	bindDatabaseFlags(fs, &cmd.Database)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s dump -table <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print every row of a bookstore table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s dump -table book\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s dump -table orders -driver sqlite -db ./demo/bookstore.db\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Table == "" {
		fs.Usage()
		return errors.New("table is required")
	}

	return nil
}

func (cmd *DumpCommand) Run() error {
	s, err := openStore(cmd.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	grid, err := s.List(context.Background(), cmd.Table)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", cmd.Table, err)
	}

	w := tabwriter.NewWriter(cmd.Out, 0, 0, 2, ' ', 0)

	headers := make([]string, len(grid.Columns))
	for i, c := range grid.Columns {
		headers[i] = strcase.ToScreamingSnake(c)
	}
	fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, row := range grid.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Out, "\n%d rows\n", len(grid.Rows))
	return nil
}
