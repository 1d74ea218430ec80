package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity issued by the identity provider.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

const devSecret = "dev-secret"

// Verifier checks HS256 access tokens signed with the provider secret.
type Verifier struct {
	secret []byte
	leeway time.Duration
}

// NewVerifier returns a verifier for secret. An empty secret falls back to a
// fixed development key unless requireSecret is set.
func NewVerifier(secret string, requireSecret bool) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		if requireSecret {
			return nil, fmt.Errorf("%w: JWT_SECRET required outside dev", ErrMissingSecret)
		}
		secret = devSecret
	}
	return &Verifier{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// Verify parses token and returns its claims when the signature, expiry and subject are valid.
func (v *Verifier) Verify(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
