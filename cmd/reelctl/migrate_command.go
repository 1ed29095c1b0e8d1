// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/config"
	"github.com/taibuivan/reel/internal/platform/migration"
)

type migrateResult struct {
	Schema *migration.Status `json:"schema,omitempty"`
	Series int               `json:"series"`
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations and upgrade a legacy single-show document",
		Long: "Applies pending SQL migrations when DOCUMENT_BACKEND=postgres, then loads the\n" +
			"document once so a legacy {showTitle, episodes} document is rewritten in the\n" +
			"multi-series format.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var result migrateResult
			if cfg.DocumentBackend == config.DocumentBackendPostgres {
				status, err := migration.Up(cfg.DatabaseURL, cfg.MigrationPath, ctx.logger(cmd))
				if err != nil {
					return err
				}
				result.Schema = &status
			}

			err = ctx.withService(cmd, func(c context.Context, service *series.Service) error {
				doc, err := service.Migrate(c)
				if err != nil {
					return err
				}
				result.Series = len(doc.Series)
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			if result.Schema != nil {
				fmt.Fprintf(out, "schema version %d (applied: %t)\n", result.Schema.Version, result.Schema.Applied)
			}
			fmt.Fprintf(out, "document ok: %d series\n", result.Series)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	return cmd
}
