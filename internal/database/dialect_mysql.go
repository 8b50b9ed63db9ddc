package database

import (
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect is the alternate server-backed engine.
type MySQLDialect struct{}

func (MySQLDialect) DriverName() string { return "mysql" }

func (MySQLDialect) DSN(config DialectConfig) string { return config.URL }

// RewriteQuery is a no-op; the driver takes ? placeholders natively.
func (MySQLDialect) RewriteQuery(query string) string { return query }

func (MySQLDialect) SupportsLastInsertId() bool { return true }

func (MySQLDialect) ConfigureConnection(db *sql.DB) error {
	tunePool(db)
	return nil
}

func (MySQLDialect) MigrationsSubdir() string { return "mysql" }

func (MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}
