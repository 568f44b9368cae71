package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// Column is one column of a bookstore table, in source order.
type Column struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Nullable bool        `json:"nullable"`
	Key      string      `json:"key,omitempty"`
	Default  null.String `json:"default"`
}

// Dialect covers the per-database differences: identifier quoting and
// column introspection.
type Dialect interface {
	Name() string
	Quote(ident string) string
	Columns(ctx context.Context, db sqlx.QueryerContext, table string) ([]Column, error)
}

// DialectFor picks the dialect for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "mysql":
		return mysqlDialect{}, nil
	case "pgx", "postgres":
		return postgresDialect{}, nil
	case "sqlite3":
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, driverName)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Quote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (d mysqlDialect) Columns(ctx context.Context, db sqlx.QueryerContext, table string) ([]Column, error) {
	rows, err := db.QueryxContext(ctx, "SHOW COLUMNS FROM "+d.Quote(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var (
			field, typ, nullable, key, extra string
			def                              null.String
		)
		if err := rows.Scan(&field, &typ, &nullable, &key, &def, &extra); err != nil {
			return nil, err
		}
		cols = append(cols, Column{
			Name:     field,
			Type:     typ,
			Nullable: nullable == "YES",
			Key:      key,
			Default:  def,
		})
	}
	return cols, rows.Err()
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (postgresDialect) Columns(ctx context.Context, db sqlx.QueryerContext, table string) ([]Column, error) {
	qry := `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`

	type columnInfo struct {
		Name     string      `db:"column_name"`
		Type     string      `db:"data_type"`
		Nullable string      `db:"is_nullable"`
		Default  null.String `db:"column_default"`
	}

	var infos []columnInfo
	if err := sqlx.SelectContext(ctx, db, &infos, qry, table); err != nil {
		return nil, err
	}

	cols := make([]Column, len(infos))
	for i, info := range infos {
		cols[i] = Column{
			Name:     info.Name,
			Type:     info.Type,
			Nullable: info.Nullable == "YES",
			Default:  info.Default,
		}
	}
	return cols, nil
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (d sqliteDialect) Columns(ctx context.Context, db sqlx.QueryerContext, table string) ([]Column, error) {
	type columnInfo struct {
		CID     int         `db:"cid"`
		Name    string      `db:"name"`
		Type    string      `db:"type"`
		NotNull int         `db:"notnull"`
		Default null.String `db:"dflt_value"`
		PK      int         `db:"pk"`
	}

	var infos []columnInfo
	if err := sqlx.SelectContext(ctx, db, &infos, fmt.Sprintf("PRAGMA table_info(%s)", d.Quote(table))); err != nil {
		return nil, err
	}

	cols := make([]Column, len(infos))
	for i, info := range infos {
		col := Column{
			Name:     info.Name,
			Type:     info.Type,
			Nullable: info.NotNull == 0 && info.PK == 0,
			Default:  info.Default,
		}
		if info.PK > 0 {
			col.Key = "PRI"
		}
		cols[i] = col
	}
	return cols, nil
}
