// Package auth provides the session orchestration layer for PantryPal.
//
// This package includes:
// - Service: wraps signup, login, logout, refresh, and validate into one façade
// - SessionStore: tracks live refresh sessions by token ID, with in-memory
//   and Redis implementations
// - Argon2id password hashing with PHC-encoded strings
//
// Usage:
//
//	sessions := auth.NewMemorySessionStore(7 * 24 * time.Hour)
//	svc, err := auth.NewService(auth.Config{...}, store, tokens, sessions)
//
//	user, pair, err := svc.Login(ctx, email, password)
//	pair, err = svc.Refresh(ctx, pair.RefreshToken)
//
// The SessionStore interface allows for alternative backends while keeping
// the refresh and logout flows unchanged.
package auth
