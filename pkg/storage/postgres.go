package storage

import (
	"database/sql"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Rebind converts ? placeholders to the $n style lib/pq expects
func (postgresDialect) Rebind(query string) string {
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

func (postgresDialect) Schema() []string {
	return []string{`
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_login TIMESTAMPTZ
	);`, `
	CREATE TABLE IF NOT EXISTS pantry_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT DEFAULT '',
		quantity DOUBLE PRECISION DEFAULT 0,
		unit TEXT DEFAULT '',
		purchase_date TIMESTAMPTZ,
		expiry_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);`, `
	CREATE INDEX IF NOT EXISTS idx_items_user ON pantry_items(user_id);`, `
	CREATE INDEX IF NOT EXISTS idx_items_expiry ON pantry_items(expiry_date);`, `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT DEFAULT '',
		servings INT DEFAULT 1,
		prep_minutes INT DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);`, `
	CREATE INDEX IF NOT EXISTS idx_recipes_user ON recipes(user_id);`, `
	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id TEXT NOT NULL,
		position INT NOT NULL,
		name TEXT NOT NULL,
		quantity DOUBLE PRECISION DEFAULT 0,
		unit TEXT DEFAULT '',
		PRIMARY KEY (recipe_id, position)
	);`, `
	CREATE TABLE IF NOT EXISTS server_settings (
		setting_key TEXT PRIMARY KEY,
		value TEXT,
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);`}
}

func (postgresDialect) UpsertSetting() string {
	return `INSERT INTO server_settings (setting_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (setting_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(dsn string, maxConns int) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return newSQLStore(db, postgresDialect{})
}
