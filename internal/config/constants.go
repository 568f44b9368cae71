package config

// Default locations and names
const (
	// DefaultDatabaseName is the bookstore schema name on MySQL/PostgreSQL servers
	DefaultDatabaseName = "bookstore"

	// DefaultSQLitePath is used when DB_DRIVER=sqlite and DB_PATH is unset
	DefaultSQLitePath = "./bookstore.db"

	// DefaultStateDatabasePath holds sessions and audit events
	DefaultStateDatabasePath = "./bookstore-state.db"
)
