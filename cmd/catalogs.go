package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// CatalogsCommand creates the catalogs command
func CatalogsCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalogs",
		Usage: "List configured catalogs and their item counts",
		Action: func(ctx context.Context, c *cli.Command) error {
			return listCatalogs(ctx, c.String("config"))
		},
	}
}

func listCatalogs(ctx context.Context, configPath string) error {
	rt, err := loadRuntime(ctx, configPath, runtimeOptions{ephemeral: true, skipIndex: true})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warnf("closing catalogs: %v", err)
		}
	}()

	catalogs := rt.registry.Catalogs()
	fmt.Println(titleStyle.Render(fmt.Sprintf("Catalogs (%d)", len(catalogs))))
	if len(catalogs) == 0 {
		fmt.Println(noDataStyle.Render("No catalogs configured"))
		return nil
	}

	total := 0
	for _, c := range catalogs {
		items, err := c.Items(ctx)
		count := metaStyle.Render(fmt.Sprintf("%s %s", formatNumber(len(items)), pluralize("item", len(items))))
		if err != nil {
			count = noDataStyle.UnsetMargins().Render("error: " + err.Error())
		}
		total += len(items)

		fmt.Printf("%s %s  %s  %s\n", typeLabel(c.ItemType()), headerStyle.Render(c.Name()), metaStyle.Render(c.Kind()), count)
		if paths := c.Paths(); len(paths) > 0 {
			fmt.Printf("           %s\n", targetStyle.Render(strings.Join(paths, ", ")))
		}
	}

	fmt.Println()
	fmt.Println(summaryStyle.Render(fmt.Sprintf("Total: %s items", formatNumber(total))))
	return nil
}
