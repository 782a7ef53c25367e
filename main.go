package main

import (
	"context"
	"log"
	"os"

	"github.com/rubiojr/docsearch/cmd"
	"github.com/rubiojr/docsearch/pkg/config"
	dlog "github.com/rubiojr/docsearch/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "docsearch",
		Usage: "Full-text search for a markdown documentation site",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			dlog.SetGlobalDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.ImportCommand(),
			cmd.SearchCommand(),
			cmd.WebCommand(),
			cmd.ClientCommand(),
			cmd.HighlightCommand(),
			cmd.StatsCommand(),
			cmd.OptimizeCommand(),
			cmd.MigrateCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
