package main

import (
	"context"
	"fmt"

	"portfolio/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:      "migrate",
	Usage:     "Run database migrations",
	ArgsUsage: "[up|down|status]",
	Action: func(c *cli.Context) error {
		direction := db.MigrateUp
		if c.Args().Present() {
			direction = db.MigrateDirection(c.Args().First())
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		return db.Migrate(ctx, pool, direction)
	},
}
