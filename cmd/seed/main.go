package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sampleprojects/postandcomments/internal/config"
	gdb "github.com/sampleprojects/postandcomments/internal/db"
	"github.com/sampleprojects/postandcomments/internal/log"
	"github.com/spf13/cobra"
)

func main() {
	var (
		migrate bool
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load sample tags, posts, details and comments",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := log.NewSugar(cfg.Env, "seed")
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			if cfg.Database.Type == gdb.TypeMemory {
				logger.Warnw("Seeding an in-memory database; the data is gone when this command exits")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			database, err := gdb.NewDatabase(&gdb.Config{
				Type:          cfg.Database.Type,
				DSN:           cfg.Database.DSN,
				MaxOpenConns:  cfg.Database.MaxOpenConns,
				MaxIdleConns:  cfg.Database.MaxIdleConns,
				SlowThreshold: cfg.Database.SlowThreshold,
			}, logger)
			if err != nil {
				return err
			}
			if err := gdb.ConnectAndMigrate(ctx, database, migrate); err != nil {
				return err
			}
			defer database.Disconnect(context.Background())

			res, err := gdb.Seed(ctx, database)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}

			logger.Infow("Seed completed", "tags", res.Tags, "posts", res.Posts, "comments", res.Comments)
			fmt.Printf("Created %d tags, %d posts, %d comments\n", res.Tags, res.Posts, res.Comments)
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables before seeding")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
