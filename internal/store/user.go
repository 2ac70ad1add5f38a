package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio/internal/utils"
	"portfolio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"id": userID})
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"email": normalizeEmail(email)})
}

func (r *UserRepository) userWhere(ctx context.Context, where sq.Eq) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

// UpsertUser creates the user or, when the email exists, replaces its password
// and role.
func (r *UserRepository) UpsertUser(ctx context.Context, user *types.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = utils.NanoID()
	}
	user.Email = normalizeEmail(user.Email)
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.StructToMap(user)).
		Suffix("ON CONFLICT (email) DO UPDATE SET password = EXCLUDED.password, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert user query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&user.ID); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
