package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"eve-pathfinder/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func defaultPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "pathfinder.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "pathfinder.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
// An empty path selects the default location next to the process.
func Open(path string) (*DB, error) {
	if path == "" {
		path = defaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS bridge_networks (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL UNIQUE,
				enabled    INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS bridges (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				network_id  TEXT NOT NULL REFERENCES bridge_networks(id),
				a_system_id INTEGER NOT NULL,
				b_system_id INTEGER NOT NULL,
				distance_ly REAL NOT NULL DEFAULT 0,
				UNIQUE(network_id, a_system_id, b_system_id)
			);
			CREATE INDEX IF NOT EXISTS idx_bridges_network ON bridges(network_id);

			CREATE TABLE IF NOT EXISTS zkill_stats (
				system_id  INTEGER PRIMARY KEY,
				kills      INTEGER NOT NULL DEFAULT 0,
				pods       INTEGER NOT NULL DEFAULT 0,
				fetched_at TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS ship_profiles (
				id               TEXT PRIMARY KEY,
				name             TEXT NOT NULL,
				ship_key         TEXT NOT NULL,
				skill_level      INTEGER NOT NULL DEFAULT 0,
				fuel_skill_level INTEGER NOT NULL DEFAULT 0,
				created_at       TEXT NOT NULL
			);

			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2 (ship profiles)")
	}

	if version < 3 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS plan_history (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp   TEXT NOT NULL,
				kind        TEXT NOT NULL,
				origin      TEXT NOT NULL,
				destination TEXT NOT NULL,
				detail      TEXT NOT NULL DEFAULT '',
				jumps       INTEGER NOT NULL,
				distance_ly REAL NOT NULL,
				metric      REAL NOT NULL,
				duration_ms INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_plan_history_ts ON plan_history(timestamp);

			INSERT OR IGNORE INTO schema_version (version) VALUES (3);
		`)
		if err != nil {
			return fmt.Errorf("migration v3: %w", err)
		}
		logger.Info("DB", "Applied migration v3 (plan history)")
	}

	return nil
}

// SqlDB returns the underlying *sql.DB for use by other packages.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}
