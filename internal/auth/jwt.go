// Package auth mints and verifies the bearer tokens that gate both the REST
// API and the signaling socket. A verified token is the sole source of a
// connection's identity: nothing downstream re-reads the user record to
// decide who is on the wire.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lawline/consult/internal/domain"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is what a verified token asserts.
type Identity struct {
	Username string
	Role     domain.Role
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *Tokens) Issue(username string, role domain.Role) (string, error) {
	now := t.now()
	c := claims{
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

func (t *Tokens) Verify(token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return t.now() }),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	role, err := domain.ParseRole(c.Role)
	if err != nil || c.Username == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{Username: c.Username, Role: role}, nil
}
