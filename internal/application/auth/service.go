package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
)

// MsgCredentialsRequired is shown when either login field is blank
const MsgCredentialsRequired = "Please enter both username and password."

// ErrNoToken means the backend accepted the login but issued no token
var ErrNoToken = errors.New("Login succeeded but no token was returned")

// Gateway is the pawn-api login endpoint
type Gateway interface {
	Login(ctx context.Context, sess *session.Handle, username, password string) (string, error)
}

// TokenReader extracts a display name from an issued token
type TokenReader interface {
	DisplayName(token string) string
}

// Service signs browsers in and out
type Service struct {
	gateway Gateway
	tokens  TokenReader
}

// NewService creates a new auth Service
func NewService(gateway Gateway, tokens TokenReader) *Service {
	return &Service{gateway: gateway, tokens: tokens}
}

// Login checks the credentials with the backend and stores the token. Any
// previously selected company is dropped.
func (s *Service) Login(ctx context.Context, sess *session.Handle, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return shared.NewValidationError("credentials", MsgCredentialsRequired)
	}
	token, err := s.gateway.Login(ctx, sess, username, password)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNoToken
	}
	return sess.SetToken(ctx, token)
}

// Logout clears the token and the company together.
func (s *Service) Logout(ctx context.Context, sess *session.Handle) error {
	return sess.Clear(ctx)
}

// CurrentUser is the name shown in the shell, or "" when unknown.
func (s *Service) CurrentUser(sess *session.Handle) string {
	if s.tokens == nil || sess == nil || sess.Token() == "" {
		return ""
	}
	return s.tokens.DisplayName(sess.Token())
}
