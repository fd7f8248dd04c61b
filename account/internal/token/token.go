// Package token issues and validates the HMAC-signed session tokens handed
// out by the account service.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SecretProvider supplies the signing secret.
type SecretProvider func() []byte

// ErrInvalidToken is returned for tokens that fail parsing or verification.
var ErrInvalidToken = errors.New("invalid token")

// Issuer signs and verifies session tokens.
type Issuer struct {
	secretProvider SecretProvider
	ttl            time.Duration
}

// NewIssuer creates a token issuer with the given token lifetime.
func NewIssuer(secretProvider SecretProvider, ttl time.Duration) *Issuer {
	return &Issuer{secretProvider: secretProvider, ttl: ttl}
}

// Issue signs a token carrying the user id as subject.
func (i *Issuer) Issue(userID string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	})
	return t.SignedString(i.secretProvider())
}

// Validate parses and verifies a token, returning the user id it carries.
func (i *Issuer) Validate(tokenString string) (string, error) {
	t, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return i.secretProvider(), nil
		},
	)
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
