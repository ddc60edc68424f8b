package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/search"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search every configured catalog",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Search query",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results (default: result_limit from config)",
			},
			&cli.StringSliceFlag{
				Name:  "type",
				Usage: "Restrict results to these item types (repeatable)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.String("query")
			if query == "" {
				query = strings.Join(c.Args().Slice(), " ")
			}
			return searchCatalogs(ctx, c.String("config"), query, c.Int("limit"), c.StringSlice("type"))
		},
	}
}

// searchCatalogs runs a one-shot ranked search and prints the results
func searchCatalogs(ctx context.Context, configPath, query string, limit int, types []string) error {
	params := search.Params{Query: query, Limit: limit}
	for _, raw := range types {
		t, err := core.ParseItemType(raw)
		if err != nil {
			return err
		}
		params.Types = append(params.Types, t)
	}

	rt, err := loadRuntime(ctx, configPath, runtimeOptions{ephemeral: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warnf("closing catalogs: %v", err)
		}
	}()

	if params.Limit <= 0 {
		params.Limit = rt.cfg.ResultLimit
	}

	svc := search.NewService(func() *index.Index { return rt.index })
	results := svc.Search(params)
	printResults(results)
	return nil
}

func printResults(results *search.Results) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Search: %q", results.Query)))

	if len(results.Items) == 0 {
		fmt.Println(noDataStyle.Render("No results found"))
		return
	}

	for i, item := range results.Items {
		fmt.Println(formatItem(i+1, item, false))
	}

	fmt.Println()
	fmt.Println(summaryStyle.Render(fmt.Sprintf("%d %s", results.Total, pluralize("result", results.Total))) +
		"  " + metaStyle.Render(formatByType(results.ByType)))
}
