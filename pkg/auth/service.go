package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "pantrypal/pkg/errors"
	"pantrypal/pkg/logger"
	"pantrypal/pkg/storage"
	"pantrypal/pkg/token"
)

// Config holds session orchestration settings
type Config struct {
	// RotateRefresh mints a new refresh token on every refresh and
	// retires the old one
	RotateRefresh bool

	// ExpiringSoon is the remaining-life threshold below which Validate
	// flags the session as expiring soon
	ExpiringSoon time.Duration

	MinPasswordLength int
}

// SessionInfo is what Validate reports back about a live session
type SessionInfo struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresIn    int64     `json:"expires_in"` // seconds
	ExpiringSoon bool      `json:"expiring_soon"`
}

// Service wraps login, signup, logout, refresh, and validate into a façade
type Service struct {
	config   Config
	store    storage.Store
	tokens   *token.Manager
	sessions SessionStore
	log      *logger.Logger
}

// NewService creates the session service
func NewService(cfg Config, store storage.Store, tokens *token.Manager, sessions SessionStore) *Service {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 8
	}
	if cfg.ExpiringSoon <= 0 {
		cfg.ExpiringSoon = 5 * time.Minute
	}
	return &Service{
		config:   cfg,
		store:    store,
		tokens:   tokens,
		sessions: sessions,
		log:      logger.Get().With("component", "auth"),
	}
}

// Signup registers a new account and opens a session for it
func (s *Service) Signup(ctx context.Context, email, name, password string) (*storage.User, *token.Pair, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if len(password) < s.config.MinPasswordLength {
		return nil, nil, apperrors.ErrWeakPassword
	}

	exists, err := s.store.EmailExists(email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, apperrors.ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user signed up", "user_id", user.ID)
	return user, pair, nil
}

// Login checks credentials and opens a session
func (s *Service) Login(ctx context.Context, email, password string) (*storage.User, *token.Pair, error) {
	user, err := s.store.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		// Do not reveal whether the account exists
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.store.UpdateLastLogin(user.ID, now); err != nil {
		s.log.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a live refresh token for a new access token. When
// rotation is enabled the refresh token is replaced too and the old one
// retired; presenting a retired token fails with ErrSessionRevoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.Pair, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, err
	}

	live, err := s.sessions.IsLive(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, apperrors.ErrSessionRevoked
	}

	user, err := s.store.GetUserByID(claims.UserID())
	if err != nil {
		return nil, err
	}

	if !s.config.RotateRefresh {
		access, accessClaims, err := s.tokens.IssueAccess(user.ID, user.Email)
		if err != nil {
			return nil, err
		}
		expiresAt := accessClaims.ExpiresAt.Time
		return &token.Pair{
			AccessToken:      access,
			RefreshToken:     refreshToken,
			TokenType:        "Bearer",
			ExpiresIn:        int64(time.Until(expiresAt).Seconds()),
			ExpiresAt:        expiresAt,
			RefreshJTI:       claims.ID,
			RefreshExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		s.log.Warn("failed to retire rotated session", "jti", claims.ID, "error", err)
	}

	s.log.Debug("session refreshed", "user_id", user.ID, "rotated", true)
	return pair, nil
}

// Validate checks an access token and reports the session state
func (s *Service) Validate(ctx context.Context, accessToken string) (*SessionInfo, error) {
	claims, err := s.tokens.Parse(accessToken, token.TypeAccess)
	if err != nil {
		return nil, err
	}

	remaining := s.tokens.RemainingLife(claims)
	return &SessionInfo{
		UserID:       claims.UserID(),
		Email:        claims.Email,
		ExpiresAt:    claims.ExpiresAt.Time,
		ExpiresIn:    int64(remaining.Seconds()),
		ExpiringSoon: remaining < s.config.ExpiringSoon,
	}, nil
}

// Logout retires the refresh session. Malformed input is ignored so that
// logout always succeeds from the client's point of view.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		s.log.Warn("failed to revoke session on logout", "jti", claims.ID, "error", err)
	}
}

// openSession mints a token pair and records its refresh session
func (s *Service) openSession(ctx context.Context, user *storage.User) (*token.Pair, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := &Session{
		JTI:       pair.RefreshJTI,
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: pair.RefreshExpiresAt,
	}
	if err := s.sessions.Record(ctx, session); err != nil {
		return nil, err
	}
	return pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
