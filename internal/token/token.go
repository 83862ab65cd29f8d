// Package token issues and verifies the stateless signed tokens that
// stand in for server-side sessions. A token is self-contained: the
// server keeps no session table, so a token stays valid until its fixed
// expiry or until the client drops the cookie.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"petitdej/internal/domain"
)

// ErrInvalidToken covers every way a token can fail verification:
// structural corruption, a bad signature, or expiry. Callers never see a
// partial identity.
var ErrInvalidToken = errors.New("invalid or expired token")

// DefaultValidity is how long an issued token remains valid.
const DefaultValidity = 90 * 24 * time.Hour

// Identity is the verified result of resolving a token.
type Identity struct {
	UserID   int64
	Username string
}

type claims struct {
	jwt.RegisteredClaims
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

// NewIssuer creates an Issuer. A zero validity falls back to
// DefaultValidity.
func NewIssuer(secret []byte, validity time.Duration) *Issuer {
	if validity == 0 {
		validity = DefaultValidity
	}
	return &Issuer{secret: secret, validity: validity}
}

// Validity returns the configured token lifetime, which the cookie
// max-age is expected to match.
func (i *Issuer) Validity() time.Duration {
	return i.validity
}

// Issue produces a signed token embedding the user's id and username.
func (i *Issuer) Issue(u *domain.User) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
		},
		UserID:   u.ID,
		Username: u.Username,
	})
	return t.SignedString(i.secret)
}

// Resolve verifies a token and returns the identity it carries. Any
// verification failure yields ErrInvalidToken.
func (i *Issuer) Resolve(tokenString string) (*Identity, error) {
	c := &claims{}
	t, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}
	if c.Username == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: c.UserID, Username: c.Username}, nil
}
