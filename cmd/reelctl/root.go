// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var verbose bool

	ctx := newCommandContext(&verbose)

	rootCmd := &cobra.Command{
		Use:           "reelctl",
		Short:         "Inspect and maintain the Reel series library",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log backend activity to stderr")

	rootCmd.AddCommand(newSeriesCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newOrphansCommand(ctx))

	return rootCmd
}
