package auth

import (
	"context"
	"errors"
	"time"

	"portfolio/pkg/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// Session is an issued access token and how long it stays valid.
type Session struct {
	Token     string
	ExpiresIn time.Duration
}

// Claims identify the holder of a verified token.
type Claims struct {
	Subject string
	Email   string
	Role    string
}

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Verify(ctx context.Context, token string) (*Claims, error)
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == string(types.UserRoleAdmin)
}
