package storage

import (
	"time"
)

// Store defines the interface for persistent storage operations
type Store interface {
	// User operations
	CreateUser(user *User) error
	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	EmailExists(email string) (bool, error)
	UpdateLastLogin(id string, at time.Time) error

	// Pantry item operations
	SaveItem(item *PantryItem) error
	GetItem(id, userID string) (*PantryItem, error)
	GetItems(userID, category string) ([]*PantryItem, error)
	GetItemsExpiringWithin(userID string, days int) ([]*PantryItem, error)
	GetAllItemsExpiringWithin(days int) ([]*PantryItem, error)
	UpdateItem(item *PantryItem) error
	DeleteItem(id, userID string) error

	// Recipe operations
	SaveRecipe(recipe *Recipe) error
	GetRecipe(id, userID string) (*Recipe, error)
	GetRecipes(userID string) ([]*Recipe, error)
	UpdateRecipe(recipe *Recipe) error
	DeleteRecipe(id, userID string) error

	// Server settings operations
	GetServerSetting(key string) (string, error)
	SetServerSetting(key, value string) error

	// Lifecycle
	Close() error
}

// User represents a registered account
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// PantryItem represents one entry in a user's pantry
type PantryItem struct {
	ID           string
	UserID       string
	Name         string
	Category     string
	Quantity     float64
	Unit         string
	PurchaseDate time.Time
	ExpiryDate   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Recipe represents a stored recipe with its ingredient list
type Recipe struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Servings    int
	PrepMinutes int
	Ingredients []Ingredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Name     string
	Quantity float64
	Unit     string
}
