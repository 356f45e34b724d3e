package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
)

func newIngestCmd(c *cli) *cobra.Command {
	var (
		entityType string
		async      bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a CSV, XLSX or XLS file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			ctx := c.context(cmd.Context())
			resp, err := c.app.Service.Ingest(ctx, core.IngestRequest{
				File:       &core.FileInput{Name: filepath.Base(args[0]), Data: data},
				EntityType: entityType,
				Async:      async,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			// The process owns the run; an async run still has to finish
			// before exit.
			if async {
				if err := c.app.Service.WaitForRuns(ctx); err != nil {
					return err
				}
				run, err := c.app.Service.GetRun(ctx, resp.LogID)
				if err != nil {
					return err
				}
				if err := writeJSON(cmd.OutOrStdout(), run); err != nil {
					return err
				}
				return runError(run.ID, run.Status, run.ErrorMessage)
			}

			if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
				return err
			}
			return runError(resp.LogID, resp.Status, resp.ErrorMessage)
		},
	}

	cmd.Flags().StringVarP(&entityType, "entity-type", "t", "", "Entity type: User, Module, Note, Presence or Activity (required)")
	cmd.Flags().BoolVar(&async, "async", false, "Process in the background and wait for completion")
	_ = cmd.MarkFlagRequired("entity-type")
	return cmd
}

// runError turns a FAILED run into a non-zero exit.
func runError(id int64, status core.Status, msg string) error {
	if status != core.StatusFailed {
		return nil
	}
	return fmt.Errorf("run %d failed: %s", id, msg)
}
