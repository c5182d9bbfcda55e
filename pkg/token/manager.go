package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "pantrypal/pkg/errors"
)

// Token type claim values
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims carries the identity payload of an issued token
type Claims struct {
	Email string `json:"email,omitempty"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim
func (c *Claims) UserID() string {
	return c.Subject
}

// Config holds the signing parameters shared by both token kinds
type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Leeway     time.Duration
}

// Pair is the access/refresh pair handed back to the client on
// login, signup, and refresh
type Pair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"` // seconds until the access token expires
	ExpiresAt    time.Time `json:"expires_at"`

	// RefreshJTI identifies the refresh session; not serialized to clients
	RefreshJTI       string    `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Manager signs and verifies session tokens
type Manager struct {
	config Config
}

// NewManager creates a token manager
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("leeway must be between 0 and 2 minutes")
	}
	return &Manager{config: cfg}, nil
}

// IssueAccess mints a signed access token for the user
func (m *Manager) IssueAccess(userID, email string) (string, *Claims, error) {
	return m.issue(userID, email, TypeAccess, m.config.AccessTTL)
}

// IssueRefresh mints a signed refresh token for the user
func (m *Manager) IssueRefresh(userID, email string) (string, *Claims, error) {
	return m.issue(userID, email, TypeRefresh, m.config.RefreshTTL)
}

// IssuePair mints a fresh access/refresh pair
func (m *Manager) IssuePair(userID, email string) (*Pair, error) {
	access, accessClaims, err := m.IssueAccess(userID, email)
	if err != nil {
		return nil, err
	}

	refresh, refreshClaims, err := m.IssueRefresh(userID, email)
	if err != nil {
		return nil, err
	}

	expiresAt := accessClaims.ExpiresAt.Time
	return &Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		ExpiresIn:        int64(time.Until(expiresAt).Seconds()),
		ExpiresAt:        expiresAt,
		RefreshJTI:       refreshClaims.ID,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

func (m *Manager) issue(userID, email, typ string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies a token and returns its claims. The outcome distinguishes
// expired tokens from malformed or forged ones, and rejects tokens whose
// "typ" claim does not match wantType.
func (m *Manager) Parse(tokenString, wantType string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(m.config.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithLeeway(m.config.Leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenMalformed
	}

	if claims.Type != wantType {
		return nil, apperrors.ErrTokenWrongType
	}

	return claims, nil
}

// RemainingLife returns how long the token is still valid for,
// clamped at zero
func (m *Manager) RemainingLife(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// AccessTTL exposes the configured access token lifetime
func (m *Manager) AccessTTL() time.Duration {
	return m.config.AccessTTL
}

// RefreshTTL exposes the configured refresh token lifetime
func (m *Manager) RefreshTTL() time.Duration {
	return m.config.RefreshTTL
}
