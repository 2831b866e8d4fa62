package main

import (
	"context"
	"errors"
	"fmt"

	"hotlist/internal/app"
	"hotlist/internal/domain/profile"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Recompute category, city, titles and roles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			return runClassify(ctx, cmd, c)
		})
	},
}

var (
	classifyCandidateID string
	classifyJobID       string
	classifyAll         bool
)

func init() {
	classifyCmd.Flags().StringVar(&classifyCandidateID, "candidate", "", "Classify a single candidate by id")
	classifyCmd.Flags().StringVar(&classifyJobID, "job", "", "Classify a single job by id")
	classifyCmd.Flags().BoolVar(&classifyAll, "all", false, "Classify every visible candidate and live job")
	classifyCmd.MarkFlagsMutuallyExclusive("candidate", "job", "all")
	classifyCmd.MarkFlagsOneRequired("candidate", "job", "all")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(ctx context.Context, cmd *cobra.Command, c *app.Container) error {
	if classifyAll {
		res, err := c.Classification.ClassifyAll(ctx)
		if res != nil {
			if perr := printJSON(cmd, res); perr != nil && err == nil {
				err = perr
			}
		}
		return err
	}

	var (
		cls *profile.Classification
		id  uuid.UUID
		err error
	)
	if classifyCandidateID != "" {
		if id, err = uuid.Parse(classifyCandidateID); err != nil {
			return fmt.Errorf("invalid candidate id: %w", err)
		}
		cls, err = c.Classification.ClassifyCandidate(ctx, id)
	} else {
		if id, err = uuid.Parse(classifyJobID); err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}
		cls, err = c.Classification.ClassifyJob(ctx, id)
	}
	if err != nil {
		return err
	}
	if cls == nil {
		return errors.New("entity not found")
	}
	return printJSON(cmd, cls)
}
