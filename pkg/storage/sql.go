package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "pantrypal/pkg/errors"
)

// dialect captures the per-backend differences: schema DDL, placeholder
// style, and the settings upsert statement
type dialect interface {
	Name() string
	Schema() []string
	Rebind(query string) string
	UpsertSetting() string
}

// sqlStore implements Store on top of database/sql. The concrete backends
// (sqlite, mysql, postgres) differ only in their dialect.
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func newSQLStore(db *sql.DB, d dialect) (*sqlStore, error) {
	s := &sqlStore{db: db, d: d}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initDB initializes the database schema
func (s *sqlStore) initDB() error {
	for _, stmt := range s.d.Schema() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("schema init failed: %w", err)
		}
	}
	return nil
}

// -- User operations --

func (s *sqlStore) CreateUser(user *User) error {
	_, err := s.db.Exec(s.d.Rebind(`
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt,
	)
	if err != nil && isDuplicate(err) {
		return apperrors.ErrEmailTaken
	}
	return err
}

func (s *sqlStore) GetUserByID(id string) (*User, error) {
	row := s.db.QueryRow(s.d.Rebind(`
		SELECT id, email, name, password_hash, created_at, last_login
		FROM users WHERE id = ?`), id)
	return scanUser(row)
}

func (s *sqlStore) GetUserByEmail(email string) (*User, error) {
	row := s.db.QueryRow(s.d.Rebind(`
		SELECT id, email, name, password_hash, created_at, last_login
		FROM users WHERE email = ?`), email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func (s *sqlStore) EmailExists(email string) (bool, error) {
	var count int
	err := s.db.QueryRow(s.d.Rebind(`SELECT COUNT(1) FROM users WHERE email = ?`), email).Scan(&count)
	return count > 0, err
}

func (s *sqlStore) UpdateLastLogin(id string, at time.Time) error {
	_, err := s.db.Exec(s.d.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), at, id)
	return err
}

// -- Pantry item operations --

func (s *sqlStore) SaveItem(item *PantryItem) error {
	_, err := s.db.Exec(s.d.Rebind(`
		INSERT INTO pantry_items (
			id, user_id, name, category, quantity, unit,
			purchase_date, expiry_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		item.ID, item.UserID, item.Name, item.Category, item.Quantity, item.Unit,
		item.PurchaseDate, item.ExpiryDate, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (s *sqlStore) GetItem(id, userID string) (*PantryItem, error) {
	row := s.db.QueryRow(s.d.Rebind(`
		SELECT id, user_id, name, category, quantity, unit,
		       purchase_date, expiry_date, created_at, updated_at
		FROM pantry_items WHERE id = ? AND user_id = ?`), id, userID)

	var item PantryItem
	err := row.Scan(&item.ID, &item.UserID, &item.Name, &item.Category, &item.Quantity,
		&item.Unit, &item.PurchaseDate, &item.ExpiryDate, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *sqlStore) GetItems(userID, category string) ([]*PantryItem, error) {
	query := `
		SELECT id, user_id, name, category, quantity, unit,
		       purchase_date, expiry_date, created_at, updated_at
		FROM pantry_items WHERE user_id = ?`
	args := []any{userID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY expiry_date ASC, name ASC`

	rows, err := s.db.Query(s.d.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *sqlStore) GetItemsExpiringWithin(userID string, days int) ([]*PantryItem, error) {
	cutoff := time.Now().AddDate(0, 0, days)
	rows, err := s.db.Query(s.d.Rebind(`
		SELECT id, user_id, name, category, quantity, unit,
		       purchase_date, expiry_date, created_at, updated_at
		FROM pantry_items WHERE user_id = ? AND expiry_date <= ?
		ORDER BY expiry_date ASC`), userID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func (s *sqlStore) GetAllItemsExpiringWithin(days int) ([]*PantryItem, error) {
	cutoff := time.Now().AddDate(0, 0, days)
	rows, err := s.db.Query(s.d.Rebind(`
		SELECT id, user_id, name, category, quantity, unit,
		       purchase_date, expiry_date, created_at, updated_at
		FROM pantry_items WHERE expiry_date <= ?
		ORDER BY user_id, expiry_date ASC`), cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]*PantryItem, error) {
	var items []*PantryItem
	for rows.Next() {
		var item PantryItem
		err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.Category, &item.Quantity,
			&item.Unit, &item.PurchaseDate, &item.ExpiryDate, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

func (s *sqlStore) UpdateItem(item *PantryItem) error {
	res, err := s.db.Exec(s.d.Rebind(`
		UPDATE pantry_items
		SET name = ?, category = ?, quantity = ?, unit = ?,
		    purchase_date = ?, expiry_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		item.Name, item.Category, item.Quantity, item.Unit,
		item.PurchaseDate, item.ExpiryDate, item.UpdatedAt,
		item.ID, item.UserID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, apperrors.ErrItemNotFound)
}

func (s *sqlStore) DeleteItem(id, userID string) error {
	res, err := s.db.Exec(s.d.Rebind(`
		DELETE FROM pantry_items WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}
	return requireRow(res, apperrors.ErrItemNotFound)
}

// -- Recipe operations --

func (s *sqlStore) SaveRecipe(recipe *Recipe) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(s.d.Rebind(`
		INSERT INTO recipes (id, user_id, title, description, servings, prep_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		recipe.ID, recipe.UserID, recipe.Title, recipe.Description,
		recipe.Servings, recipe.PrepMinutes, recipe.CreatedAt, recipe.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertIngredients(tx, s.d, recipe); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *sqlStore) GetRecipe(id, userID string) (*Recipe, error) {
	row := s.db.QueryRow(s.d.Rebind(`
		SELECT id, user_id, title, description, servings, prep_minutes, created_at, updated_at
		FROM recipes WHERE id = ? AND user_id = ?`), id, userID)

	var r Recipe
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description,
		&r.Servings, &r.PrepMinutes, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrRecipeNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadIngredients(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *sqlStore) GetRecipes(userID string) ([]*Recipe, error) {
	rows, err := s.db.Query(s.d.Rebind(`
		SELECT id, user_id, title, description, servings, prep_minutes, created_at, updated_at
		FROM recipes WHERE user_id = ? ORDER BY title ASC`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*Recipe
	for rows.Next() {
		var r Recipe
		err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Description,
			&r.Servings, &r.PrepMinutes, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, r := range recipes {
		if err := s.loadIngredients(r); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (s *sqlStore) loadIngredients(r *Recipe) error {
	rows, err := s.db.Query(s.d.Rebind(`
		SELECT name, quantity, unit FROM recipe_ingredients
		WHERE recipe_id = ? ORDER BY position ASC`), r.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.Name, &ing.Quantity, &ing.Unit); err != nil {
			return err
		}
		r.Ingredients = append(r.Ingredients, ing)
	}
	return rows.Err()
}

// UpdateRecipe updates the recipe row and replaces its ingredient list
// in the same transaction
func (s *sqlStore) UpdateRecipe(recipe *Recipe) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(s.d.Rebind(`
		UPDATE recipes
		SET title = ?, description = ?, servings = ?, prep_minutes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`),
		recipe.Title, recipe.Description, recipe.Servings, recipe.PrepMinutes,
		recipe.UpdatedAt, recipe.ID, recipe.UserID,
	)
	if err != nil {
		return err
	}
	if err := requireRow(res, apperrors.ErrRecipeNotFound); err != nil {
		return err
	}

	if _, err := tx.Exec(s.d.Rebind(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`), recipe.ID); err != nil {
		return err
	}
	if err := insertIngredients(tx, s.d, recipe); err != nil {
		return err
	}

	return tx.Commit()
}

func insertIngredients(tx *sql.Tx, d dialect, recipe *Recipe) error {
	for i, ing := range recipe.Ingredients {
		_, err := tx.Exec(d.Rebind(`
			INSERT INTO recipe_ingredients (recipe_id, position, name, quantity, unit)
			VALUES (?, ?, ?, ?, ?)`),
			recipe.ID, i, ing.Name, ing.Quantity, ing.Unit,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *sqlStore) DeleteRecipe(id, userID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(s.d.Rebind(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.Exec(s.d.Rebind(`DELETE FROM recipes WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return err
	}
	if err := requireRow(res, apperrors.ErrRecipeNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

// -- Server settings operations --

func (s *sqlStore) GetServerSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(s.d.Rebind(`SELECT value FROM server_settings WHERE setting_key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *sqlStore) SetServerSetting(key, value string) error {
	_, err := s.db.Exec(s.d.Rebind(s.d.UpsertSetting()), key, value, time.Now())
	return err
}

// Close closes the underlying database handle
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// isDuplicate reports whether err is a unique constraint violation.
// Matched by message so it works across all three drivers.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
