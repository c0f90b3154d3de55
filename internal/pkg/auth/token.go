// Package auth issues and reads the bearer tokens used by the HTTP API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	kratosjwt "github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/golang-jwt/jwt/v5"

	"moviereview/internal/conf"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	issuer = "moviereview"

	defaultTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by every token. Subject is the user id, or the
// admin email for admin tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(c *conf.Auth) (*TokenManager, error) {
	if c == nil || c.JwtSecret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	ttl := c.TokenTTL.AsDuration()
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{secret: []byte(c.JwtSecret), ttl: ttl}, nil
}

// Issue signs a token for subject with the given role.
func (m *TokenManager) Issue(subject, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a signed token and returns its claims.
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.Keyfunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}

// Keyfunc resolves the verification key; it is shared with the server middleware.
func (m *TokenManager) Keyfunc(*jwt.Token) (interface{}, error) {
	return m.secret, nil
}

// NewClaims allocates the claims type the server middleware decodes into.
func NewClaims() jwt.Claims {
	return &Claims{}
}

// FromContext returns the claims placed in ctx by the jwt middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	raw, ok := kratosjwt.FromContext(ctx)
	if !ok {
		return nil, false
	}
	claims, ok := raw.(*Claims)
	return claims, ok
}
