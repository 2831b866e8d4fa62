package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotlist/internal/app"
	"hotlist/internal/domain/match"
	"hotlist/internal/usecase"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errMatchNotFound = errors.New("match not found")

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Query and update matches",
}

var matchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches with filters, sorting and pagination",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := listParams(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			page, err := c.MatchQuery.List(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		})
	},
}

var matchesStatusCmd = &cobra.Command{
	Use:   "status <match-id> <status>",
	Short: "Move a match to another status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid match id: %w", err)
		}
		to, err := match.ParseStatus(args[1])
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			m, err := c.Lifecycle.UpdateStatus(ctx, id, to)
			return printMatch(cmd, m, err)
		})
	},
}

var matchesPlaceCmd = &cobra.Command{
	Use:   "place <match-id>",
	Short: "Mark a match as placed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid match id: %w", err)
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			m, err := c.Lifecycle.MarkPlaced(ctx, id, placeNotes)
			return printMatch(cmd, m, err)
		})
	},
}

var matchesAssessCmd = &cobra.Command{
	Use:   "assess <match-id>",
	Short: "Record an external AI assessment for a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid match id: %w", err)
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			m, err := c.Lifecycle.ApplyAIAssessment(ctx, id, assessScore, assessExplanation)
			return printMatch(cmd, m, err)
		})
	},
}

var matchesDeleteCmd = &cobra.Command{
	Use:   "delete <match-id>",
	Short: "Delete a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid match id: %w", err)
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			ok, err := c.Lifecycle.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return errMatchNotFound
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted match %s\n", id)
			return err
		})
	},
}

var (
	listJobID       string
	listCandidateID string
	listStatuses    []string
	listStaleOnly   bool
	listGoodOnly    bool
	listMinKeyword  float64
	listMinPre      float64
	listAIChecked   string
	listSort        string
	listLimit       int
	listOffset      int

	placeNotes string

	assessScore       float64
	assessExplanation string
)

func init() {
	f := matchesListCmd.Flags()
	f.StringVar(&listJobID, "job", "", "Only matches of this job")
	f.StringVar(&listCandidateID, "candidate", "", "Only matches of this candidate")
	f.StringSliceVar(&listStatuses, "status", nil, "Only these statuses (repeatable)")
	f.BoolVar(&listStaleOnly, "stale", false, "Only stale matches")
	f.BoolVar(&listGoodOnly, "good", false, "Only matches at or above the good match threshold")
	f.Float64Var(&listMinKeyword, "min-keyword", 0, "Minimum keyword score (0..1)")
	f.Float64Var(&listMinPre, "min-pre-score", 0, "Minimum pre-score (0..100)")
	f.StringVar(&listAIChecked, "ai-checked", "", "Filter on AI assessment: true or false")
	f.StringVar(&listSort, "sort", "", "Sort as field[:asc|desc]; fields: pre_score, distance, keyword_score, ai_score, created_at")
	f.IntVar(&listLimit, "limit", 0, "Page size (default 50, max 500)")
	f.IntVar(&listOffset, "offset", 0, "Rows to skip")

	matchesPlaceCmd.Flags().StringVar(&placeNotes, "notes", "", "Placement notes")

	matchesAssessCmd.Flags().Float64Var(&assessScore, "score", 0, "AI score 0..100 (required)")
	matchesAssessCmd.Flags().StringVar(&assessExplanation, "explanation", "", "AI explanation")
	if err := matchesAssessCmd.MarkFlagRequired("score"); err != nil {
		panic(fmt.Sprintf("failed to mark score flag as required: %v", err))
	}

	matchesCmd.AddCommand(matchesListCmd, matchesStatusCmd, matchesPlaceCmd, matchesAssessCmd, matchesDeleteCmd)
	rootCmd.AddCommand(matchesCmd)
}

func listParams(cmd *cobra.Command) (usecase.MatchListParams, error) {
	p := usecase.MatchListParams{
		StaleOnly: listStaleOnly,
		GoodOnly:  listGoodOnly,
		Sort:      listSort,
		Limit:     listLimit,
		Offset:    listOffset,
	}
	if listJobID != "" {
		id, err := uuid.Parse(listJobID)
		if err != nil {
			return p, fmt.Errorf("invalid job id: %w", err)
		}
		p.JobID = &id
	}
	if listCandidateID != "" {
		id, err := uuid.Parse(listCandidateID)
		if err != nil {
			return p, fmt.Errorf("invalid candidate id: %w", err)
		}
		p.CandidateID = &id
	}
	for _, s := range listStatuses {
		st, err := match.ParseStatus(s)
		if err != nil {
			return p, err
		}
		p.Statuses = append(p.Statuses, st)
	}
	if cmd.Flags().Changed("min-keyword") {
		v := listMinKeyword
		p.MinKeywordScore = &v
	}
	if cmd.Flags().Changed("min-pre-score") {
		v := listMinPre
		p.MinPreScore = &v
	}
	switch strings.ToLower(strings.TrimSpace(listAIChecked)) {
	case "":
	case "true", "yes":
		v := true
		p.AIChecked = &v
	case "false", "no":
		v := false
		p.AIChecked = &v
	default:
		return p, fmt.Errorf("invalid --ai-checked value %q", listAIChecked)
	}
	return p, nil
}

func printMatch(cmd *cobra.Command, m *match.Match, err error) error {
	if err != nil {
		return err
	}
	if m == nil {
		return errMatchNotFound
	}
	return printJSON(cmd, m)
}
