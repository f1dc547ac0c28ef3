// Package auth verifies access tokens issued by the identity service.
// Tokens are only read here; signing exists for local tooling and tests.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stockroom/backend/internal/infrastructure/config"
)

// TokenType distinguishes access tokens from refresh tokens of the same issuer
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the access token claims the service relies on
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// Identity is the verified actor of a request
type Identity struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
}

// JWTService verifies HS256 access tokens
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTService creates a verifier for cfg
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Verify parses tokenString and returns the identity it carries
func (s *JWTService) Verify(tokenString string) (Identity, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Identity{}, ErrTokenNotYetValid
	case err != nil:
		return Identity{}, ErrInvalidToken
	}

	if claims.TokenType != TokenTypeAccess {
		return Identity{}, ErrInvalidTokenType
	}
	return claims.Identity()
}

// Identity parses the tenant and user ids
func (c *Claims) Identity() (Identity, error) {
	if c.TenantID == "" {
		return Identity{}, ErrMissingTenantID
	}
	if c.UserID == "" {
		return Identity{}, ErrMissingUserID
	}
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return Identity{}, ErrMissingTenantID
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Identity{}, ErrMissingUserID
	}
	return Identity{TenantID: tenantID, UserID: userID, Username: c.Username}, nil
}

// Sign issues an access token for id valid for ttl
func (s *JWTService) Sign(id Identity, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:  id.TenantID.String(),
		UserID:    id.UserID.String(),
		Username:  id.Username,
		TokenType: TokenTypeAccess,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
