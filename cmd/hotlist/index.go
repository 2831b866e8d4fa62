package main

import (
	"context"
	"fmt"

	"hotlist/internal/app"
	"hotlist/internal/domain/match"
	"hotlist/internal/infrastructure/search"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Copy coordinates of candidates and jobs into Elasticsearch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			return runIndex(ctx, cmd, c)
		})
	},
}

var (
	indexRecreate        bool
	indexRemoveCandidate string
	indexRemoveJob       string
)

func init() {
	indexCmd.Flags().BoolVar(&indexRecreate, "recreate", false, "Drop and rebuild both indices")
	indexCmd.Flags().StringVar(&indexRemoveCandidate, "remove-candidate", "", "Remove one candidate from the index instead of syncing")
	indexCmd.Flags().StringVar(&indexRemoveJob, "remove-job", "", "Remove one job from the index instead of syncing")
	indexCmd.MarkFlagsMutuallyExclusive("recreate", "remove-candidate", "remove-job")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, cmd *cobra.Command, c *app.Container) error {
	sync, err := c.SearchIndexSync()
	if err != nil {
		return err
	}
	if err := search.Ping(ctx, c.ES); err != nil {
		return err
	}

	if indexRemoveCandidate != "" || indexRemoveJob != "" {
		ref, err := removeRef()
		if err != nil {
			return err
		}
		if err := sync.Remove(ctx, ref); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", ref.Kind, ref.ID)
		return err
	}

	res, err := sync.Sync(ctx, indexRecreate)
	if res != nil {
		if perr := printJSON(cmd, res); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func removeRef() (match.EntityRef, error) {
	if indexRemoveCandidate != "" {
		id, err := uuid.Parse(indexRemoveCandidate)
		if err != nil {
			return match.EntityRef{}, fmt.Errorf("invalid candidate id: %w", err)
		}
		return match.CandidateRef(id), nil
	}
	id, err := uuid.Parse(indexRemoveJob)
	if err != nil {
		return match.EntityRef{}, fmt.Errorf("invalid job id: %w", err)
	}
	return match.JobRef(id), nil
}
