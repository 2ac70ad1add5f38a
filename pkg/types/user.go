package types

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Role      UserRole  `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
