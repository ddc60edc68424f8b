package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// RecentCommand creates the recent command
func RecentCommand() *cli.Command {
	return &cli.Command{
		Name:  "recent",
		Usage: "Manage the recent searches list",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show recent searches, most recent first",
				Action: func(ctx context.Context, c *cli.Command) error {
					return listRecent(ctx, c.String("config"))
				},
			},
			{
				Name:      "add",
				Usage:     "Record a search as if it had been submitted",
				ArgsUsage: "<query>",
				Action: func(ctx context.Context, c *cli.Command) error {
					return addRecent(ctx, c.String("config"), strings.Join(c.Args().Slice(), " "))
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every recent search",
				Action: func(ctx context.Context, c *cli.Command) error {
					return clearRecent(ctx, c.String("config"))
				},
			},
		},
	}
}

func withRecent(ctx context.Context, configPath string, fn func(rt *runtime) error) error {
	rt, err := loadRuntime(ctx, configPath, runtimeOptions{skipIndex: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warnf("closing runtime: %v", err)
		}
	}()
	return fn(rt)
}

func listRecent(ctx context.Context, configPath string) error {
	return withRecent(ctx, configPath, func(rt *runtime) error {
		printRecent(rt.recent.List())
		return nil
	})
}

func addRecent(ctx context.Context, configPath, query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("a non-blank query is required")
	}
	return withRecent(ctx, configPath, func(rt *runtime) error {
		if !rt.recent.Promote(query) {
			return fmt.Errorf("query %q was not recorded", query)
		}
		printRecent(rt.recent.List())
		return nil
	})
}

func clearRecent(ctx context.Context, configPath string) error {
	return withRecent(ctx, configPath, func(rt *runtime) error {
		rt.recent.Clear()
		fmt.Println("Recent searches cleared")
		return nil
	})
}

func printRecent(queries []string) {
	fmt.Println(titleStyle.Render("Recent searches"))
	if len(queries) == 0 {
		fmt.Println(noDataStyle.Render("No recent searches"))
		return
	}
	for i, q := range queries {
		fmt.Printf("%2d. %s\n", i+1, q)
	}
}
