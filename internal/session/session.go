// Package session carries the authenticated back-office user and bearer token
// through request contexts.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the staff account returned by the auth endpoints.
type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, "admin")
}

// Session is a bearer token plus the user it was issued to.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the token is past its expiry. A zero expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// AuthorizationHeader returns the value for the Authorization header, or "".
func (s *Session) AuthorizationHeader() string {
	if s == nil || s.Token == "" {
		return ""
	}
	return "Bearer " + s.Token
}

// FromToken reads the subject and expiry claims of a bearer token. The signature
// is not checked; the issuing API remains the authority on validity.
func FromToken(token string) (*Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("session: empty token")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: parse token: %w", err)
	}
	s := &Session{Token: token}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time.UTC()
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		s.User.ID = sub
	} else if id, ok := claims["id"].(string); ok {
		s.User.ID = id
	}
	if role, ok := claims["role"].(string); ok {
		s.User.Role = role
	}
	if email, ok := claims["email"].(string); ok {
		s.User.Email = email
	}
	return s, nil
}

type contextKey struct{}

// WithSession returns a child context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
