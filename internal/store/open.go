package store

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/bookstore/internal/config"
)

const (
	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432
	pingTimeout         = 5 * time.Second
)

// Open connects to the bookstore database and verifies the connection.
func Open(cfg config.Database) (*sqlx.DB, error) {
	driverName, dsn, err := DataSource(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Driver, err)
	}

	if driverName == "sqlite3" {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// DataSource returns the database/sql driver name and DSN for cfg.
func DataSource(cfg config.Database) (driverName, dsn string, err error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(portOrDefault(cfg.Port, defaultMySQLPort)))
		mc.DBName = cfg.Name
		// RowsAffected reports matched rows, not changed rows
		mc.ClientFoundRows = true
		return "mysql", mc.FormatDSN(), nil

	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(portOrDefault(cfg.Port, defaultPostgresPort))),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return "pgx", u.String(), nil

	case config.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = config.DefaultSQLitePath
		}
		return "sqlite3", path + "?_foreign_keys=on&_busy_timeout=5000", nil
	}

	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Driver)
}

func portOrDefault(port, def int) int {
	if port <= 0 {
		return def
	}
	return port
}
