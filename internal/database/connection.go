package database

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	driverMu      sync.RWMutex
	currentDriver = "postgres"
)

// SetDriver records the active SQL driver so query helpers can adjust
// placeholder syntax. Open calls this; tests may call it directly.
func SetDriver(name string) {
	driverMu.Lock()
	currentDriver = strings.ToLower(name)
	driverMu.Unlock()
}

// Driver returns the active SQL driver name.
func Driver() string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return currentDriver
}

// IsMySQL returns true if using MySQL/MariaDB.
func IsMySQL() bool {
	d := Driver()
	return d == "mysql" || d == "mariadb"
}

// IsPostgreSQL returns true if using PostgreSQL.
func IsPostgreSQL() bool {
	return Driver() == "postgres"
}

// IsSQLite returns true if using SQLite.
func IsSQLite() bool {
	return Driver() == "sqlite3"
}

// Open connects to the configured database and verifies the connection.
func Open(driver, dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sql.DB, error) {
	switch strings.ToLower(driver) {
	case "postgres", "mysql", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(strings.ToLower(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if connMaxLifetime > 0 {
		db.SetConnMaxLifetime(connMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	SetDriver(driver)
	return db, nil
}
