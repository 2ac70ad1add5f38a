package main

import (
	"fmt"

	"portfolio/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate NanoIDs in the format used for document ids",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "Length of each ID",
			Value:   utils.NanoidSize,
		},
	},
	Action: func(c *cli.Context) error {
		for range c.Int("count") {
			fmt.Println(utils.NanoIDSize(c.Int("size")))
		}
		return nil
	},
}
