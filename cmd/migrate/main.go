package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/cobra"

	"github.com/ignite/advent-ledger/migrations"
)

func main() {
	var dsn string

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the engagement ledger schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("DATABASE_URL or --dsn is required")
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Postgres connection string (defaults to DATABASE_URL)")

	rootCmd.AddCommand(upCommand(&dsn), listCommand(&dsn))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func upCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *dsn, func(ctx context.Context, db *sql.DB) error {
				ran, err := migrations.Up(ctx, db, migrations.FS)
				for _, v := range ran {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s ... OK\n", v)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Done: %d applied\n", len(ran))
				return nil
			})
		},
	}
}

func listCommand(dsn *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), *dsn, func(ctx context.Context, db *sql.DB) error {
				status, err := migrations.Status(ctx, db, migrations.FS)
				if err != nil {
					return err
				}
				for _, m := range status {
					state := "pending"
					if m.Applied {
						state = "applied"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %-28s %s\n", m.Version, state)
				}
				return nil
			})
		},
	}
}

func withDB(ctx context.Context, dsn string, fn func(context.Context, *sql.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return fn(ctx, db)
}
