package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/txingest/internal/adapter/repository/postgres"
	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/auth"
	"github.com/iho/txingest/internal/infrastructure/config"
	"github.com/iho/txingest/internal/infrastructure/logger"
	"github.com/iho/txingest/internal/infrastructure/postgres"
)

// Commands in this file talk to the database or use server secrets directly
// and read the same environment as the server.

var loadConfig = config.Load

func tokenCmd() *cobra.Command {
	var subject, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			if ttl == 0 {
				ttl = cfg.JWTExpiration
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).Generate(subject, domain.Role(role))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleOperator), "Role: admin, operator or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, cliLogger(cmd, cfg))
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, cliLogger(cmd, cfg))
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(cfg.DatabaseURL, cfg.MigrationsPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %d\nDirty: %v\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func recordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record <source-row-id>",
		Short: "Show which transaction a source line produced, e.g. sales.csv#L4",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DatabaseTimeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, 1, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := postgresRepo.NewLedgerStore(pool, postgresRepo.NewTxManager(pool), postgresRepo.NewRetrier(cliLogger(cmd, cfg)))
			record, err := store.IngestionRecord(ctx, args[0])
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("source row %s has not been ingested", args[0])
			}

			return printJSON(cmd.OutOrStdout(), record)
		},
	}
}

func cliLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})
}
