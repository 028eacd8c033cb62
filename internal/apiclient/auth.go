package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/session"
)

type authPayload struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Register creates a staff account and returns its session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*session.Session, error) {
	if errs := session.ValidateRegistration(name, email, password); len(errs) > 0 {
		for _, field := range []string{"name", "email", "password"} {
			if msg, ok := errs[field]; ok {
				return nil, apperr.Validation(field, msg)
			}
		}
	}
	raw, err := c.invoke(ctx, request{
		Method:   http.MethodPost,
		Endpoint: "/auth/register",
		Path:     "/auth/register",
		Body: map[string]string{
			"name":     strings.TrimSpace(name),
			"email":    strings.TrimSpace(email),
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	return c.sessionFrom(raw)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if err := session.ValidateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apperr.Validation("password", "Password is required")
	}
	raw, err := c.invoke(ctx, request{
		Method:   http.MethodPost,
		Endpoint: "/auth/login",
		Path:     "/auth/login",
		Body:     map[string]string{"email": strings.TrimSpace(email), "password": password},
	})
	if err != nil {
		return nil, err
	}
	return c.sessionFrom(raw)
}

// Logout ends the session carried by ctx.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.invoke(ctx, request{Method: http.MethodPost, Endpoint: "/auth/logout", Path: "/auth/logout"})
	return err
}

// Me returns the user behind the current token.
func (c *Client) Me(ctx context.Context) (*session.User, error) {
	raw, err := c.invoke(ctx, request{Method: http.MethodGet, Endpoint: "/auth/me", Path: "/auth/me"})
	if err != nil {
		return nil, err
	}
	out, err := decodeData[struct {
		User session.User `json:"user"`
	}](raw)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) sessionFrom(raw []byte) (*session.Session, error) {
	payload, err := decodeData[authPayload](raw)
	if err != nil {
		return nil, err
	}
	if payload.Token == "" {
		return nil, apperr.Network("auth", errMissingToken)
	}
	s, err := session.FromToken(payload.Token)
	if err != nil {
		// Opaque tokens are still usable as bearer credentials.
		c.logger.Debug("token claims unreadable", "error", err)
		s = &session.Session{Token: payload.Token}
	}
	claimsID := s.User.ID
	s.User = payload.User
	if s.User.ID == "" {
		s.User.ID = claimsID
	}
	return s, nil
}
