// Package database provides the SQL connection wrapper and dialect
// abstraction over SQLite, PostgreSQL and MySQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DB pairs the connection pool with its dialect. All query helpers
// route through the dialect's placeholder rewriting.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open creates and configures a database connection. dbType selects
// the dialect; url serves PostgreSQL/MySQL and path serves SQLite.
func Open(dbType, url, path string) (*DB, error) {
	var dialect Dialect
	var dialectConfig DialectConfig

	switch strings.ToLower(dbType) {
	case "postgres", "postgresql":
		dialect = PostgresDialect{}
		dialectConfig = DialectConfig{URL: url}
	case "mysql":
		dialect = MySQLDialect{}
		dialectConfig = DialectConfig{URL: url}
	case "sqlite", "sqlite3", "":
		dialect = SQLiteDialect{}
		dialectConfig = DialectConfig{Path: path}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(dialectConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// OpenSQLite opens a local SQLite database at path. Used for the
// score fallback store when the primary database is unreachable.
func OpenSQLite(path string) (*DB, error) {
	return Open("sqlite", "", path)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Query runs a multi-row query after dialect rewriting.
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// QueryRow runs a single-row query after dialect rewriting.
func (db *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// Exec runs a statement after dialect rewriting.
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.RewriteQuery(query), args...)
}

// ExecReturningID executes an INSERT and returns the new row's ID.
// Drivers without LastInsertId() support (PostgreSQL) get a RETURNING
// clause appended instead.
func (db *DB) ExecReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	rewritten := db.Dialect.RewriteQuery(query)

	if db.Dialect.SupportsLastInsertId() {
		result, err := db.DB.ExecContext(ctx, rewritten, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	rewritten = strings.TrimSuffix(strings.TrimSpace(rewritten), ";")
	rewritten += " RETURNING id"

	var id int64
	if err := db.DB.QueryRowContext(ctx, rewritten, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
