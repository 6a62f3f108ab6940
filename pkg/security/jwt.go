package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a session token can be unusable: bad
// signature, wrong algorithm, malformed payload, or expiry.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims binds a user to the password version they logged in with
type SessionClaims struct {
	jwt.RegisteredClaims
	PasswordVersion int `json:"pv"`
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an HS256 issuer. now may be nil, in which case the
// wall clock is used.
func NewTokenIssuer(secret string, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}

	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
	}
}

// Issue signs a new token for userID carrying passwordVersion
func (t *TokenIssuer) Issue(userID string, passwordVersion int) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		PasswordVersion: passwordVersion,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token, %w", err)
	}

	return signed, exp.Truncate(time.Second), nil
}

// Decode verifies raw and returns its claims. Any failure is ErrInvalidToken.
func (t *TokenIssuer) Decode(raw string) (*SessionClaims, error) {
	var claims SessionClaims

	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
