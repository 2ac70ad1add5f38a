package seed

import (
	"context"
	"fmt"

	"portfolio/internal/auth"
	"portfolio/pkg/types"
)

type UserUpserter interface {
	UpsertUser(ctx context.Context, user *types.User) error
}

// SeedAdmin creates an admin user, or resets the password of an existing one.
func SeedAdmin(ctx context.Context, users UserUpserter, email, password string) (*types.User, error) {
	if email == "" || len(password) < 8 {
		return nil, fmt.Errorf("an email and a password of at least 8 characters are required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &types.User{Email: email, Password: hash, Role: types.UserRoleAdmin}
	if err := users.UpsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert admin %s: %w", email, err)
	}

	return user, nil
}
