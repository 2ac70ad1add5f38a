package main

import (
	"context"
	"fmt"

	"portfolio/internal/content"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "Print a resolved document",
	ArgsUsage: "<project|category|section> <id-or-slug>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "lang",
			Aliases: []string{"l"},
			Usage:   "Language to resolve",
			Value:   content.BaseLanguage,
		},
		&cli.BoolFlag{
			Name:  "admin",
			Usage: "Show every language",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("usage: show %s", c.Command.ArgsUsage)
		}

		kind, query, err := showTarget(c.Args().Get(0), c.Args().Get(1))
		if err != nil {
			return err
		}

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
			return err
		}
		defer a.close()

		doc, err := a.resolver.Lookup(ctx, kind, query, content.View{
			Language:   c.String("lang"),
			Privileged: c.Bool("admin"),
		})
		if err != nil {
			return err
		}

		pp.Println(doc)
		return nil
	},
}

func showTarget(name, key string) (*content.Kind, content.Query, error) {
	switch name {
	case "project":
		return content.Projects, content.Query{ID: key}, nil
	case "category":
		return content.Categories, content.Query{Slug: key}, nil
	case "section":
		return content.Sections, content.Query{ID: key}, nil
	default:
		return nil, content.Query{}, fmt.Errorf("unknown kind %q", name)
	}
}
