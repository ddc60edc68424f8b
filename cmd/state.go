package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/config"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

// StateCommand creates the state command
func StateCommand() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect and maintain the state database",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show migrations and stored keys (applies pending migrations)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return stateStatus(c.String("config"))
				},
			},
			{
				Name:  "optimize",
				Usage: "Run the SQLite optimizer, checkpoint the WAL and VACUUM",
				Action: func(ctx context.Context, c *cli.Command) error {
					return stateOptimize(c.String("config"))
				},
			},
		},
	}
}

func openState(configPath string) (*storage.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := storage.Open(cfg.StatePath())
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}
	return store, nil
}

func stateStatus(configPath string) error {
	store, err := openState(configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Println(titleStyle.Render("State database"))
	fmt.Printf("Path: %s\n", store.Path())
	if info, err := os.Stat(store.Path()); err == nil {
		fmt.Printf("Size: %s bytes, modified %s\n", formatNumber(int(info.Size())), formatTime(info.ModTime()))
	}

	status, err := storage.NewMigrationManager(store.DB()).GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Applied migrations: %d", len(status.Applied))))
	for _, migration := range status.Applied {
		appliedTime := "unknown"
		if migration.AppliedAt != nil {
			appliedTime = formatTime(*migration.AppliedAt)
		}
		fmt.Printf("  ✓ %03d: %s %s\n", migration.Version, migration.Name, metaStyle.Render("("+appliedTime+")"))
	}
	if len(status.Pending) > 0 {
		fmt.Println(headerStyle.Render(fmt.Sprintf("Pending migrations: %d", len(status.Pending))))
		for _, migration := range status.Pending {
			fmt.Printf("  • %03d: %s\n", migration.Version, migration.Name)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}
	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Keys: %d", len(keys))))
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	return nil
}

func stateOptimize(configPath string) error {
	store, err := openState(configPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Optimize(); err != nil {
		return fmt.Errorf("optimizing: %w", err)
	}
	if _, err := store.DB().Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuuming: %w", err)
	}
	fmt.Printf("Optimized %s\n", store.Path())
	return nil
}
