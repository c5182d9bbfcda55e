package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pantrypal/pkg/errors"
)

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// Common error messages
const (
	ErrInvalidRequest = "invalid request"
	ErrUnauthorized   = "unauthorized"
	ErrInternalServer = "internal server error"
)

// RespondError writes an error response
func RespondError(c *gin.Context, statusCode int, errorMsg string) {
	c.JSON(statusCode, ErrorResponse{
		Error: errorMsg,
		Code:  statusCode,
	})
}

// RespondServiceError translates a domain error into an HTTP response
func RespondServiceError(c *gin.Context, err error) {
	status, msg := statusForError(err)
	RespondError(c, status, msg)
}

// statusForError maps domain sentinel errors to HTTP status codes. Unknown
// errors become a generic 500 so internals never leak to clients.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, apperrors.ErrTokenMalformed),
		errors.Is(err, apperrors.ErrTokenWrongType):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, apperrors.ErrSessionRevoked):
		return http.StatusUnauthorized, "session revoked"
	case errors.Is(err, apperrors.ErrEmailTaken):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, apperrors.ErrWeakPassword):
		return http.StatusBadRequest, "password too short"
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, apperrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, apperrors.ErrRecipeNotFound):
		return http.StatusNotFound, "recipe not found"
	default:
		return http.StatusInternalServerError, ErrInternalServer
	}
}
