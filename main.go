package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookstore/internal/cli"
	"github.com/mrlokans/bookstore/internal/config"
	"github.com/mrlokans/bookstore/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "tables":
		cmd = cli.NewTablesCommand(config.NewConfig().Database)
	case "dump":
		cmd = cli.NewDumpCommand(config.NewConfig().Database)
	case "seed-demo":
		cmd = cli.NewSeedDemoCommand(config.NewConfig().Database)
	case "hash-password":
		cmd = cli.NewHashPasswordCommand()

	case "version":
		fmt.Printf("bookstore %s (%s)\n", Version, Commit)
		return

	case "-h", "--help", "help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve           Start the bookstore console (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  tables          List the bookstore tables with row counts and columns\n")
	fmt.Fprintf(os.Stderr, "  dump            Print every row of one table\n")
	fmt.Fprintf(os.Stderr, "  seed-demo       Create the bookstore schema and load demo data\n")
	fmt.Fprintf(os.Stderr, "  hash-password   Print a bcrypt hash for the credentials table\n")
	fmt.Fprintf(os.Stderr, "  version         Print the build version\n")
	fmt.Fprintf(os.Stderr, "\nDatabase settings come from DB_* environment variables.\n")
	fmt.Fprintf(os.Stderr, "Use '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
