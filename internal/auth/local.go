package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"golang.org/x/crypto/bcrypt"
)

type UserFinder interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
}

// LocalAuthenticator checks passwords against the users table and issues
// HS256 tokens.
type LocalAuthenticator struct {
	users  UserFinder
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLocalAuthenticator(users UserFinder, secret string, ttl time.Duration) (*LocalAuthenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	return &LocalAuthenticator{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (a *LocalAuthenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	token, err := jwt.NewBuilder().
		Subject(user.ID).
		IssuedAt(now).
		Expiration(now.Add(a.ttl)).
		Claim("email", user.Email).
		Claim("role", string(user.Role)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), a.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: string(signed), ExpiresIn: a.ttl}, nil
}

func (a *LocalAuthenticator) Verify(ctx context.Context, token string) (*Claims, error) {
	parsed, err := jwt.Parse(
		[]byte(token),
		jwt.WithKey(jwa.HS256(), a.secret),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(a.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claimsOf(parsed)
}

func claimsOf(token jwt.Token) (*Claims, error) {
	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	claims := &Claims{Subject: subject}
	_ = token.Get("email", &claims.Email)
	_ = token.Get("role", &claims.Role)

	return claims, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
