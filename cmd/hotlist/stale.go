package main

import (
	"context"
	"fmt"

	"hotlist/internal/app"
	"hotlist/internal/domain/match"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "Flag the matches of one candidate or job as stale",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			ref, err := staleRef()
			if err != nil {
				return err
			}
			n, err := c.Lifecycle.MarkStale(ctx, ref, staleReason)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"entity": ref.Kind, "id": ref.ID, "marked": n})
		})
	},
}

var (
	staleCandidateID string
	staleJobID       string
	staleReason      string
)

func init() {
	staleCmd.Flags().StringVar(&staleCandidateID, "candidate", "", "Candidate id")
	staleCmd.Flags().StringVar(&staleJobID, "job", "", "Job id")
	staleCmd.Flags().StringVar(&staleReason, "reason", "", "Stale reason, e.g. address_changed (required)")
	staleCmd.MarkFlagsMutuallyExclusive("candidate", "job")
	staleCmd.MarkFlagsOneRequired("candidate", "job")
	if err := staleCmd.MarkFlagRequired("reason"); err != nil {
		panic(fmt.Sprintf("failed to mark reason flag as required: %v", err))
	}
	rootCmd.AddCommand(staleCmd)
}

func staleRef() (match.EntityRef, error) {
	if staleCandidateID != "" {
		id, err := uuid.Parse(staleCandidateID)
		if err != nil {
			return match.EntityRef{}, fmt.Errorf("invalid candidate id: %w", err)
		}
		return match.CandidateRef(id), nil
	}
	id, err := uuid.Parse(staleJobID)
	if err != nil {
		return match.EntityRef{}, fmt.Errorf("invalid job id: %w", err)
	}
	return match.JobRef(id), nil
}
