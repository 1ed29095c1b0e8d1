// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/reel/internal/core/series"
)

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Inspect series in the library",
	}
	cmd.AddCommand(newSeriesListCommand(ctx))
	cmd.AddCommand(newSeriesShowCommand(ctx))
	return cmd
}

func newSeriesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, service *series.Service) error {
				list, err := service.ListSeries(c)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, list)
				}

				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{
						s.ID,
						s.Title,
						strconv.Itoa(s.EpisodeCount),
						strconv.Itoa(mediaCount(s)),
						s.CreatedAt.Format("2006-01-02 15:04"),
					})
				}
				writeTable(cmd,
					[]string{"ID", "Title", "Episodes", "Media", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func newSeriesShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the episodes of one series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(cmd, func(c context.Context, service *series.Service) error {
				s, err := service.GetSeries(c, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, s)
				}

				rows := make([][]string, 0, len(s.Episodes))
				for i, episode := range s.Episodes {
					rows = append(rows, []string{
						strconv.Itoa(i),
						episode.Title,
						orDash(episode.Thumbnail),
						orDash(episode.MusicOriginalName),
						strconv.Itoa(len(episode.Media)),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Title, s.ID)
				writeTable(cmd,
					[]string{"#", "Title", "Thumbnail", "Music", "Media"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func mediaCount(s *series.Series) int {
	total := 0
	for _, episode := range s.Episodes {
		total += len(episode.Media)
	}
	return total
}
