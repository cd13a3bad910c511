package service

import (
	"time"

	"accountsvc/internal/security"
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// SessionTokens issues and verifies the stateless session tokens carried in
// the session cookie. Nothing is stored server side, so a token stays valid
// until it expires.
type SessionTokens struct {
	secret string
	ttl    time.Duration
	clock  Clock
}

func NewSessionTokens(secret string, ttl time.Duration, clock Clock) *SessionTokens {
	return &SessionTokens{secret: secret, ttl: ttl, clock: clock}
}

func (s *SessionTokens) Issue(userID string) (string, time.Time, error) {
	return security.GenerateSessionToken(s.secret, userID, s.clock.now(), s.ttl)
}

// Verify returns the user id the token was issued for.
func (s *SessionTokens) Verify(token string) (string, error) {
	if token == "" {
		return "", newError(ErrUnauthenticated, msgNotAuthorized)
	}
	claims, err := security.ParseSessionToken(token, s.secret, s.clock.now())
	if err != nil {
		return "", wrapError(ErrUnauthenticated, msgNotAuthorized, err)
	}
	return claims.UserID, nil
}
