// Package storage provides persistent data storage abstraction for PantryPal.
//
// This package defines the Store interface and a database/sql implementation
// covering users, pantry items, recipes with their ingredient lists, and
// server settings. SQLite is the default backend; MySQL and PostgreSQL are
// selected through the factory based on configuration.
//
// Usage:
//
//	store, err := storage.NewSQLiteStore("./pantrypal.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.CreateUser(&storage.User{...})
//	items, err := store.GetItems(userID, "")
package storage
