// Package store gives schema-driven access to the bookstore tables.
//
// Every table name passed in is resolved through the catalog registry and
// every column name is checked against the live column list before it is
// quoted into a statement. Values always travel as bind parameters.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"

	"github.com/mrlokans/bookstore/internal/catalog"
)

// DefaultQueryTimeout bounds a single statement when no timeout is configured.
const DefaultQueryTimeout = 10 * time.Second

// Row is one record rendered as text, in column order. NULL becomes "".
type Row []string

// ID returns the first cell, the primary key by convention.
func (r Row) ID() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// Grid is a table snapshot for display.
type Grid struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

type Store struct {
	db      *sqlx.DB
	dialect Dialect
	timeout time.Duration
}

// New wraps an open connection. The dialect follows the driver name.
func New(db *sqlx.DB, timeout time.Duration) (*Store, error) {
	dialect, err := DialectFor(db.DriverName())
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Store{db: db, dialect: dialect, timeout: timeout}, nil
}

func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Columns introspects a registered table.
func (s *Store) Columns(ctx context.Context, table string) ([]Column, error) {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.columns(ctx, entity.Table)
}

func (s *Store) columns(ctx context.Context, table string) ([]Column, error) {
	cols, err := s.dialect.Columns(ctx, s.db, table)
	if err != nil {
		return nil, fmt.Errorf("read columns of %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumns, table)
	}
	return cols, nil
}

// List returns every row of a table.
func (s *Store) List(ctx context.Context, table string) (*Grid, error) {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+s.dialect.Quote(entity.Table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entity.Table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	grid := &Grid{Columns: names, Rows: []Row{}}
	for rows.Next() {
		row, err := scanRow(rows, len(names))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity.Table, err)
		}
		grid.Rows = append(grid.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", entity.Table, err)
	}
	return grid, nil
}

// Get fetches one record by its first-column id.
func (s *Store) Get(ctx context.Context, table, id string) (Row, error) {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cols, err := s.columns(ctx, entity.Table)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(fmt.Sprintf("SELECT * FROM %s WHERE %s = ?",
		s.dialect.Quote(entity.Table), s.dialect.Quote(cols[0].Name)))

	rows, err := s.db.QueryxContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", entity.Table, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRecordNotFound
	}

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	return scanRow(rows, len(names))
}

// Insert adds one record. columns may be any subset of the table's
// columns and are matched case-insensitively.
func (s *Store) Insert(ctx context.Context, table string, columns, values []string) error {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return err
	}
	if len(columns) != len(values) || len(columns) == 0 {
		return ErrColumnMismatch
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cols, err := s.columns(ctx, entity.Table)
	if err != nil {
		return err
	}
	quoted, err := s.resolveColumns(cols, columns)
	if err != nil {
		return err
	}

	query := s.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.Quote(entity.Table),
		strings.Join(quoted, ", "),
		placeholders(len(quoted))))

	if _, err := s.db.ExecContext(ctx, query, toArgs(values)...); err != nil {
		return fmt.Errorf("insert into %s: %w", entity.Table, classify(err))
	}
	return nil
}

// Update rewrites the given columns of the record with id.
func (s *Store) Update(ctx context.Context, table, id string, columns, values []string) error {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return err
	}
	if len(columns) != len(values) || len(columns) == 0 {
		return ErrColumnMismatch
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cols, err := s.columns(ctx, entity.Table)
	if err != nil {
		return err
	}
	quoted, err := s.resolveColumns(cols, columns)
	if err != nil {
		return err
	}

	assignments := make([]string, len(quoted))
	for i, col := range quoted {
		assignments[i] = col + " = ?"
	}
	query := s.db.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		s.dialect.Quote(entity.Table),
		strings.Join(assignments, ", "),
		s.dialect.Quote(cols[0].Name)))

	args := append(toArgs(values), id)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", entity.Table, id, classify(err))
	}
	return expectAffected(res)
}

// Delete removes the record whose first column equals id.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cols, err := s.columns(ctx, entity.Table)
	if err != nil {
		return err
	}

	query := s.db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE %s = ?",
		s.dialect.Quote(entity.Table), s.dialect.Quote(cols[0].Name)))

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", entity.Table, id, classify(err))
	}
	return expectAffected(res)
}

// Options lists the values a foreign-key column may take.
func (s *Store) Options(ctx context.Context, fk catalog.ForeignKey) ([]string, error) {
	ref, err := catalog.Lookup(fk.RefTable)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	col := s.dialect.Quote(fk.RefColumn)
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		col, s.dialect.Quote(ref.Table), col))
	if err != nil {
		return nil, fmt.Errorf("load %s options: %w", fk.Column, err)
	}
	defer rows.Close()

	options := []string{}
	for rows.Next() {
		row, err := scanRow(rows, 1)
		if err != nil {
			return nil, err
		}
		options = append(options, row[0])
	}
	return options, rows.Err()
}

// Count returns the number of rows in a table.
func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	entity, err := catalog.Lookup(table)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+s.dialect.Quote(entity.Table)); err != nil {
		return 0, fmt.Errorf("count %s: %w", entity.Table, err)
	}
	return n, nil
}

// LookupCredential returns the stored password for username. The table and
// column names come from configuration, not from requests.
func (s *Store) LookupCredential(ctx context.Context, table, userColumn, passColumn, username string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.Rebind(fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		s.dialect.Quote(passColumn), s.dialect.Quote(table), s.dialect.Quote(userColumn)))

	var password null.String
	if err := s.db.QueryRowxContext(ctx, query, username).Scan(&password); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrRecordNotFound
		}
		return "", fmt.Errorf("lookup credential: %w", err)
	}
	return password.String, nil
}

// resolveColumns maps requested names onto real columns and quotes them.
func (s *Store) resolveColumns(cols []Column, requested []string) ([]string, error) {
	quoted := make([]string, len(requested))
	for i, name := range requested {
		found := false
		for _, col := range cols {
			if strings.EqualFold(col.Name, strings.TrimSpace(name)) {
				quoted[i] = s.dialect.Quote(col.Name)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
	}
	return quoted, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func scanRow(rows *sqlx.Rows, width int) (Row, error) {
	raw := make([]any, width)
	dest := make([]any, width)
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, width)
	for i, v := range raw {
		row[i] = stringify(v)
	}
	return row, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.DateTime)
	default:
		return fmt.Sprint(val)
	}
}
