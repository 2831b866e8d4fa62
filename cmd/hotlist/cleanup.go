package main

import (
	"context"

	"hotlist/internal/app"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete matches of deleted jobs and unreviewed matches of hidden candidates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			res, err := c.Lifecycle.CleanupOrphaned(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
