package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/swinggity/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const SessionTTL = 7 * 24 * time.Hour

// Session signs and verifies stateless HS256 session tokens. A token stays
// valid until it expires; there is no server-side revocation.
type Session struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSession(key []byte) *Session {
	return &Session{key: key, ttl: SessionTTL, now: time.Now}
}

// WithClock returns a copy that reads time from now. Used by tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	c := *s
	c.now = now
	return &c
}

// Issue returns a signed token carrying only the user's identity.
func (s *Session) Issue(userID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the user ID carried by raw, or domain.ErrUnauthorized.
func (s *Session) Verify(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return "", domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
