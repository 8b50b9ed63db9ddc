package database

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Connection pool tuning shared by all dialects.
const (
	poolMaxOpen     = 25
	poolMaxIdle     = 5
	poolMaxLifetime = 5 * time.Minute
	poolMaxIdleTime = time.Minute
)

// Dialect abstracts over the differences between the supported SQL
// engines. Queries in the repositories are written once with ?
// placeholders; the dialect rewrites them where the driver needs it.
type Dialect interface {
	// DriverName is the name registered with database/sql.
	DriverName() string

	// DSN builds the connection string from the dialect config.
	DSN(config DialectConfig) string

	// RewriteQuery adapts placeholder syntax for the driver.
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether Result.LastInsertId works.
	// When it does not, inserts go through a RETURNING clause.
	SupportsLastInsertId() bool

	// ConfigureConnection applies pool settings and engine pragmas.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names this dialect's embedded migrations folder.
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the migration-tracking DDL.
	CreateMigrationsTableQuery() string
}

// DialectConfig carries the connection settings. Path is for SQLite,
// URL for the server-backed engines.
type DialectConfig struct {
	Path string
	URL  string
}

func tunePool(db *sql.DB) {
	db.SetMaxOpenConns(poolMaxOpen)
	db.SetMaxIdleConns(poolMaxIdle)
	db.SetConnMaxLifetime(poolMaxLifetime)
	db.SetConnMaxIdleTime(poolMaxIdleTime)
}

// rewritePlaceholdersToNumbered turns each ? into $1, $2, and so on.
// Queries never embed a literal question mark, so a plain scan is
// enough.
func rewritePlaceholdersToNumbered(query string) string {
	if !strings.ContainsRune(query, '?') {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
