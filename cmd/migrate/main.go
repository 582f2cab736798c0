package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/sampleprojects/postandcomments/internal/config"
	"github.com/sampleprojects/postandcomments/internal/log"
	"github.com/sampleprojects/postandcomments/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.Infof(strings.TrimSuffix(format, "\n"), v...)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the PostgreSQL schema of the posts API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("dsn", "", "PostgreSQL DSN (defaults to BLOG_DB_DSN)")

	rootCmd.AddCommand(
		gooseCmd("up", "Apply all pending migrations", goose.UpContext),
		gooseCmd("down", "Roll back the latest migration", goose.DownContext),
		gooseCmd("redo", "Roll back and re-apply the latest migration", goose.RedoContext),
		gooseCmd("reset", "Roll back every migration", goose.ResetContext),
		gooseCmd("status", "Show the state of every migration", goose.StatusContext),
		gooseCmd("version", "Print the current schema version", goose.VersionContext),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type gooseFunc func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error

func gooseCmd(use, short string, run gooseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, logger, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			defer logger.Sync()

			if err := run(cmd.Context(), db, "."); err != nil {
				return fmt.Errorf("migration %s failed: %w", use, err)
			}
			return nil
		},
	}
}

func openDB(cmd *cobra.Command) (*sql.DB, *zap.SugaredLogger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := log.NewSugar(cfg.Env, "migrate")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no database DSN: set BLOG_DB_DSN or pass --dsn")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to set dialect: %w", err)
	}
	return db, logger, nil
}
