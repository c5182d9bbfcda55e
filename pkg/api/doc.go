// Package api provides HTTP API handlers and middleware for the server.
//
// This package encapsulates all HTTP-related concerns:
// - REST API endpoints for auth, pantry items, recipes
// - Bearer token authentication middleware
// - Error responses and domain error to status code mapping
// - CORS and request logging middleware
// - The websocket upgrade endpoint for live pantry events
//
// The package uses gin-gonic for routing. Handlers translate between the
// wire DTOs and the domain services; they hold no business logic.
package api
