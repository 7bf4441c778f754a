package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Open connects to postgres through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens an embedded database file. ":memory:" is accepted for tests.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

// Connect opens the database selected by driver ("sqlite" or "postgres")
// and reports the matching Dialect.
func Connect(driver, sqlitePath, databaseURL string) (*sql.DB, Dialect, error) {
	d, err := ParseDialect(driver)
	if err != nil {
		return nil, 0, fmt.Errorf("openDB: %w", err)
	}

	var conn *sql.DB
	if d == Postgres {
		conn, err = Open(databaseURL)
	} else {
		conn, err = OpenSQLite(sqlitePath)
	}
	if err != nil {
		return nil, 0, err
	}
	return conn, d, nil
}
