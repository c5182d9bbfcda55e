package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pantrypal/pkg/auth"
	"pantrypal/pkg/logger"
)

// Context keys set by the auth middleware
const (
	ctxUserID  = "user_id"
	ctxSession = "session"
)

// AuthMiddleware validates the Bearer access token on protected routes and
// stores the resolved session on the request context
func AuthMiddleware(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			RespondError(c, http.StatusUnauthorized, ErrUnauthorized)
			c.Abort()
			return
		}

		info, err := authSvc.Validate(c.Request.Context(), tok)
		if err != nil {
			RespondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(ctxUserID, info.UserID)
		c.Set(ctxSession, info)
		c.Next()
	}
}

// bearerToken extracts the token from the Authorization header. Websocket
// clients cannot set headers from the browser, so a token query parameter
// is accepted as a fallback.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query("token")
}

// userID returns the authenticated user set by AuthMiddleware
func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// CORSMiddleware handles CORS headers for the SPA origin
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestLogger logs each request once it completes
func RequestLogger() gin.HandlerFunc {
	log := logger.Get().With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
