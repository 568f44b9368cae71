// Package database owns the local SQLite state database.
//
// The bookstore tables are external and are reached through the store
// package. This database only keeps what the console itself produces:
//
//	database/
//	├── database.go   # Connection setup and migrations
//	└── audit/        # Audit event repository
//
// The same connection backs the web session table (see auth.NewSessionManager).
//
// Each sub-package exposes a Repository built from the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./bookstore-state.db")
//	events := audit.NewRepository(db.DB)
package database
