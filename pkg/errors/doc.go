// Package errors provides standardized error definitions for the PantryPal
// backend. All error definitions are centralized here to ensure consistency
// across the API, domain services, and storage layers.
package errors
