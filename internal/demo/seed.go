package demo

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var ErrUnsupportedDriver = errors.New("unsupported driver for demo schema")

// Table holds the seed rows of one bookstore table. Ids are left to the database.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Dataset is inserted in order so referenced rows exist before the rows pointing at them.
var Dataset = []Table{
	{
		Name:    "admin",
		Columns: []string{"Username", "Password"},
		Rows: [][]any{
			{"admin", "admin"},
			{"manager", "shelf-keeper"},
		},
	},
	{
		Name:    "staff",
		Columns: []string{"Name", "Role", "Phone", "Email"},
		Rows: [][]any{
			{"Alice Reed", "Manager", "555-0101", "alice@bookstore.test"},
			{"Brian Cole", "Clerk", "555-0102", "brian@bookstore.test"},
			{"Chen Liu", "Cashier", "555-0103", "chen@bookstore.test"},
		},
	},
	{
		Name:    "supplier",
		Columns: []string{"Name", "Contact", "Address"},
		Rows: [][]any{
			{"Harbour Distribution", "Mara Jones", "12 Harbour Rd"},
			{"Northwind Books", "Tom Price", "8 Mill Lane"},
		},
	},
	{
		Name:    "book",
		Columns: []string{"Title", "Author", "Genre", "Price", "Stock"},
		Rows: [][]any{
			{"Pride and Prejudice", "Jane Austen", "Classic", 9.99, 12},
			{"Dune", "Frank Herbert", "Science Fiction", 14.5, 7},
			{"The Hobbit", "J. R. R. Tolkien", "Fantasy", 11.25, 9},
			{"Sapiens", "Yuval Noah Harari", "History", 18, 4},
		},
	},
	{
		Name:    "customer",
		Columns: []string{"Name", "Email", "Phone", "Address"},
		Rows: [][]any{
			{"Dana Fox", "dana@mail.test", "555-0201", "3 Elm St"},
			{"Evan Hart", "evan@mail.test", "555-0202", "41 Oak Ave"},
			{"Fiona Gale", "fiona@mail.test", "555-0203", "7 Birch Ct"},
		},
	},
	{
		Name:    "orders",
		Columns: []string{"Customer_ID", "Staff_ID", "Order_Date", "Total_Amount"},
		Rows: [][]any{
			{1, 2, "2024-03-01", 24.49},
			{2, 3, "2024-03-02", 11.25},
			{1, 2, "2024-03-05", 18},
		},
	},
	{
		Name:    "orderdetails",
		Columns: []string{"Order_ID", "Book_ID", "Quantity", "Price"},
		Rows: [][]any{
			{1, 1, 1, 9.99},
			{1, 2, 1, 14.5},
			{2, 3, 1, 11.25},
			{3, 4, 1, 18},
		},
	},
	{
		Name:    "supply",
		Columns: []string{"Supplier_ID", "Book_ID", "Supply_Date", "Quantity"},
		Rows: [][]any{
			{1, 1, "2024-02-20", 20},
			{2, 2, "2024-02-21", 10},
			{1, 3, "2024-02-22", 15},
			{2, 4, "2024-02-23", 6},
		},
	},
}

// Schema returns the bookstore DDL for a database/sql driver name.
func Schema(driverName string) (string, error) {
	var file string
	switch driverName {
	case "sqlite3":
		file = "schema/sqlite.sql"
	case "mysql":
		file = "schema/mysql.sql"
	case "pgx", "postgres":
		file = "schema/postgres.sql"
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDriver, driverName)
	}

	data, err := schemaFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}

// Seed creates the bookstore tables and fills them with the demo dataset.
// Rows are only inserted when the admin table is empty, so reseeding is a no-op.
func Seed(ctx context.Context, db *sqlx.DB) error {
	ddl, err := Schema(db.DriverName())
	if err != nil {
		return err
	}

	for _, stmt := range statements(ddl) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	quote := quoteFunc(db.DriverName())

	var admins int
	if err := db.GetContext(ctx, &admins, "SELECT COUNT(*) FROM "+quote("admin")); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		log.Debug().Str("component", "demo").Msg("bookstore already seeded")
		return nil
	}

	for _, table := range Dataset {
		cols := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			cols[i] = quote(c)
		}
		query := db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quote(table.Name),
			strings.Join(cols, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")))

		for _, row := range table.Rows {
			if _, err := db.ExecContext(ctx, query, row...); err != nil {
				return fmt.Errorf("seed %s: %w", table.Name, err)
			}
		}
		log.Info().Str("component", "demo").Str("table", table.Name).Int("rows", len(table.Rows)).Msg("seeded table")
	}

	return nil
}

// statements splits a DDL script on semicolons, dropping comment lines.
func statements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func quoteFunc(driverName string) func(string) string {
	if driverName == "mysql" {
		return func(s string) string { return "`" + s + "`" }
	}
	return func(s string) string { return `"` + s + `"` }
}
