package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type MigrateDirection string

const (
	MigrateUp     MigrateDirection = "up"
	MigrateDown   MigrateDirection = "down"
	MigrateStatus MigrateDirection = "status"
)

// Migrate runs the embedded migrations against the pool's database.
func Migrate(ctx context.Context, pool *pgxpool.Pool, direction MigrateDirection) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	var err error
	switch direction {
	case MigrateUp:
		err = goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil {
		return fmt.Errorf("running migrations %s: %w", direction, err)
	}

	return nil
}
