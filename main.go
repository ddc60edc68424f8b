package main

import (
	"context"
	stdlog "log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/cmd"
	_ "github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/catalogs/inventory"
	_ "github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/catalogs/static"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/config"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
)

func main() {
	app := &cli.Command{
		Name:  "possearch",
		Usage: "Unified search for the Bit-Vend POS",
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
			log.SetGlobalDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.SearchCommand(),
			cmd.RecentCommand(),
			cmd.CatalogsCommand(),
			cmd.ServeCommand(),
			cmd.ConsoleCommand(),
			cmd.StateCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		stdlog.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		stdlog.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
