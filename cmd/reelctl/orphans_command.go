// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/reel/internal/core/series"
)

type orphansResult struct {
	Orphans []string `json:"orphans"`
	Deleted bool     `json:"deleted"`
	Failed  int      `json:"failed"`
}

func newOrphansCommand(ctx *commandContext) *cobra.Command {
	var (
		asJSON bool
		remove bool
	)

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List stored assets that no series references",
		Long: "Lists stored assets that no series references, such as media left behind when\n" +
			"an episode count was reduced. With --delete they are removed. An upload still in\n" +
			"flight on a running server can show up here, so prefer running it while idle.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, service *series.Service) error {
				result := orphansResult{Deleted: remove}

				var err error
				if remove {
					result.Orphans, result.Failed, err = service.PurgeOrphans(c)
				} else {
					result.Orphans, err = service.Orphans(c)
				}
				if err != nil {
					return err
				}
				if result.Orphans == nil {
					result.Orphans = []string{}
				}

				if asJSON {
					return writeJSON(cmd, result)
				}

				out := cmd.OutOrStdout()
				if len(result.Orphans) == 0 {
					fmt.Fprintln(out, "no orphaned assets")
					return nil
				}

				rows := make([][]string, 0, len(result.Orphans))
				for _, key := range result.Orphans {
					rows = append(rows, []string{key})
				}
				writeTable(cmd, []string{"Key"}, rows, nil)

				if remove {
					fmt.Fprintf(out, "deleted %d, failed %d\n", len(result.Orphans)-result.Failed, result.Failed)
				}
				if result.Failed > 0 {
					return fmt.Errorf("%d orphaned assets could not be deleted", result.Failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the orphaned assets")
	return cmd
}
