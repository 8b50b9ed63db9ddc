package database

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// PostgresDialect is the intended primary score store in cloud
// deployments.
type PostgresDialect struct{}

func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) DSN(config DialectConfig) string { return config.URL }

// RewriteQuery numbers the placeholders ($1, $2, ...) as lib/pq
// requires.
func (PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// SupportsLastInsertId is false; inserts needing the new id get a
// RETURNING clause appended instead.
func (PostgresDialect) SupportsLastInsertId() bool { return false }

func (PostgresDialect) ConfigureConnection(db *sql.DB) error {
	tunePool(db)
	return nil
}

func (PostgresDialect) MigrationsSubdir() string { return "postgres" }

func (PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}
