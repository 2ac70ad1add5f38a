package main

import (
	"context"
	"fmt"

	"portfolio/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with initial categories and about-us sections",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		ctx := context.Background()

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, logger, awsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer a.close()

		logger.Info("Seeding categories...")
		if err := seed.SeedCategories(ctx, logger, a.resolver, a.reconciler); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		logger.Info("Seeding about-us sections...")
		if err := seed.SeedSections(ctx, logger, a.resolver, a.reconciler); err != nil {
			return fmt.Errorf("failed to seed sections: %w", err)
		}

		logger.Info("Seed complete")

		return nil
	},
}

var createAdminCommand = &cli.Command{
	Name:  "create-admin",
	Usage: "Create or reset the admin user for the local auth provider",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "email",
			Usage:    "Admin email",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Admin password",
			EnvVars:  []string{"ADMIN_PASSWORD"},
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		ctx := context.Background()

		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, logger, awsConfig)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer a.close()

		user, err := seed.SeedAdmin(ctx, a.users, c.String("email"), c.String("password"))
		if err != nil {
			return err
		}

		logger.WithField("email", user.Email).Info("admin user ready")
		return nil
	},
}
