package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) Schema() []string {
	return []string{`
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login DATETIME
	);`, `
	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);`, `
	CREATE TABLE IF NOT EXISTS pantry_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT DEFAULT '',
		quantity REAL DEFAULT 0,
		unit TEXT DEFAULT '',
		purchase_date DATETIME,
		expiry_date DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);`, `
	CREATE INDEX IF NOT EXISTS idx_items_user ON pantry_items(user_id);`, `
	CREATE INDEX IF NOT EXISTS idx_items_expiry ON pantry_items(expiry_date);`, `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		servings INTEGER DEFAULT 1,
		prep_minutes INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);`, `
	CREATE INDEX IF NOT EXISTS idx_recipes_user ON recipes(user_id);`, `
	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		quantity REAL DEFAULT 0,
		unit TEXT DEFAULT '',
		PRIMARY KEY (recipe_id, position),
		FOREIGN KEY (recipe_id) REFERENCES recipes(id)
	);`, `
	CREATE TABLE IF NOT EXISTS server_settings (
		setting_key TEXT PRIMARY KEY,
		value TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`}
}

func (sqliteDialect) UpsertSetting() string {
	return `INSERT INTO server_settings (setting_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(setting_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
}

// NewSQLiteStore creates a new SQLite-backed store
func NewSQLiteStore(dbPath string) (Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite handles a single writer; keep the pool at one connection
	db.SetMaxOpenConns(1)
	return newSQLStore(db, sqliteDialect{})
}
