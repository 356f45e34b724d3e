package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/edupath-ingest/internal/application"
	"github.com/JonMunkholm/edupath-ingest/internal/config"
	"github.com/JonMunkholm/edupath-ingest/internal/core"
	"github.com/JonMunkholm/edupath-ingest/internal/logging"
)

// cli carries the application built before a subcommand runs.
type cli struct {
	app    *application.App
	userID string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:           "ingestctl",
		Short:         "Ingest academic data files and inspect ingestion runs",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Logs go to stderr so stdout stays machine readable.
			slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))

			app, err := application.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&c.userID, "user", os.Getenv("USER"), "User id recorded as the run trigger")

	cmd.AddCommand(newIngestCmd(c), newStatusCmd(c), newRunsCmd(c))
	return cmd
}

// context attaches the CLI user as the caller identity.
func (c *cli) context(ctx context.Context) context.Context {
	if c.userID == "" {
		return ctx
	}
	return core.ContextWithIdentity(ctx, core.Identity{UserID: c.userID})
}
