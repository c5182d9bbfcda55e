package errors

import "errors"

// Authentication errors
var (
	// ErrInvalidCredentials is returned when login credentials do not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when signing up with an email that already exists
	ErrEmailTaken = errors.New("email already registered")

	// ErrWeakPassword is returned when a password fails the policy check
	ErrWeakPassword = errors.New("password too weak")

	// ErrSessionRevoked is returned when a refresh token's session is no longer live
	ErrSessionRevoked = errors.New("session revoked")
)

// Token errors
var (
	// ErrTokenExpired is returned when a token's signature is good but it has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned when a token cannot be parsed or its signature fails
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenWrongType is returned when an access token is presented where a
	// refresh token is expected, or vice versa
	ErrTokenWrongType = errors.New("wrong token type")
)

// Resource errors
var (
	// ErrUserNotFound is returned when a user lookup fails
	ErrUserNotFound = errors.New("user not found")

	// ErrItemNotFound is returned when a pantry item lookup fails
	ErrItemNotFound = errors.New("pantry item not found")

	// ErrRecipeNotFound is returned when a recipe lookup fails
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Storage errors
var (
	// ErrStorageNotInitialized is returned when storage is not initialized
	ErrStorageNotInitialized = errors.New("storage not initialized")

	// ErrDatabaseConnection is returned when database connection fails
	ErrDatabaseConnection = errors.New("database connection failed")
)

// Configuration errors
var (
	// ErrConfigNotFound is returned when configuration file is not found
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")
)
