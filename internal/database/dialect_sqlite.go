package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDialect backs the default local deployment and the score
// fallback store.
type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string { return "sqlite3" }

func (SQLiteDialect) DSN(config DialectConfig) string { return config.Path }

// RewriteQuery is a no-op; the driver takes ? placeholders natively.
func (SQLiteDialect) RewriteQuery(query string) string { return query }

func (SQLiteDialect) SupportsLastInsertId() bool { return true }

func (SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	tunePool(db)

	// WAL lets score writes proceed alongside reads.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA foreign_keys=ON;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

func (SQLiteDialect) MigrationsSubdir() string { return "sqlite" }

func (SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}
