package storage

import (
	"database/sql"
	"strings"

	_ "github.com/go-sql-driver/mysql"
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) Rebind(query string) string { return query }

func (mysqlDialect) Schema() []string {
	return []string{`
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(36) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255),
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login DATETIME NULL
	);`, `
	CREATE TABLE IF NOT EXISTS pantry_items (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		category VARCHAR(100) DEFAULT '',
		quantity DOUBLE DEFAULT 0,
		unit VARCHAR(50) DEFAULT '',
		purchase_date DATETIME,
		expiry_date DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_items_user (user_id),
		INDEX idx_items_expiry (expiry_date)
	);`, `
	CREATE TABLE IF NOT EXISTS recipes (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		servings INT DEFAULT 1,
		prep_minutes INT DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_recipes_user (user_id)
	);`, `
	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id VARCHAR(36) NOT NULL,
		position INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		quantity DOUBLE DEFAULT 0,
		unit VARCHAR(50) DEFAULT '',
		PRIMARY KEY (recipe_id, position)
	);`, `
	CREATE TABLE IF NOT EXISTS server_settings (
		setting_key VARCHAR(191) PRIMARY KEY,
		value TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`}
}

func (mysqlDialect) UpsertSetting() string {
	return `INSERT INTO server_settings (setting_key, value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`
}

// NewMySQLStore creates a new MySQL-backed store. The DSN gains
// parseTime=true when not already present so DATETIME columns scan
// into time.Time.
func NewMySQLStore(dsn string, maxConns int) (Store, error) {
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return newSQLStore(db, mysqlDialect{})
}
