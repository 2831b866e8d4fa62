package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"hotlist/internal/logger"
	"hotlist/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobError struct {
	JobID uuid.UUID `json:"job_id"`
	Error string    `json:"error"`
}

type BatchResult struct {
	Jobs      int           `json:"jobs"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Deleted   int           `json:"deleted"`
	Errors    []JobError    `json:"errors"`
	Cancelled bool          `json:"cancelled"`
	Duration  time.Duration `json:"duration"`
}

type BatchRecalculationCoordinator interface {
	Run(ctx context.Context, purgeUnchecked bool) (*BatchResult, error)
}

type ActiveJobLister interface {
	ListActiveGeocodedIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
}

type JobRecalculator interface {
	RecalculateJobByID(ctx context.Context, jobID uuid.UUID, purgeUnchecked bool) (*RecalcResult, error)
}

// BatchRecalculation sweeps every active geocoded job one at a time. A
// failing job is recorded and the sweep continues.
type BatchRecalculation struct {
	jobs     ActiveJobLister
	recalc   JobRecalculator
	pageSize int
	logger   *zap.Logger
}

func NewBatchRecalculation(jobs ActiveJobLister, recalc JobRecalculator, pageSize int, log *zap.Logger) *BatchRecalculation {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &BatchRecalculation{jobs: jobs, recalc: recalc, pageSize: pageSize, logger: logger.OrNop(log)}
}

// Run checks ctx between jobs only. A job that already started runs to
// completion even when ctx is cancelled meanwhile.
func (b *BatchRecalculation) Run(ctx context.Context, purgeUnchecked bool) (*BatchResult, error) {
	start := time.Now()
	res := &BatchResult{Errors: []JobError{}}
	jobCtx := context.WithoutCancel(ctx)

	after := uuid.Nil
	for {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}
		ids, err := b.jobs.ListActiveGeocodedIDs(ctx, after, b.pageSize)
		if err != nil {
			res.Duration = time.Since(start)
			metrics.BatchRuns.WithLabelValues("failed").Inc()
			return res, fmt.Errorf("list active jobs after %s: %w", after, err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				res.Cancelled = true
				break
			}
			b.runOne(jobCtx, id, purgeUnchecked, res)
		}
		if res.Cancelled || len(ids) < b.pageSize {
			break
		}
		after = ids[len(ids)-1]
	}

	res.Duration = time.Since(start)
	outcome := "ok"
	switch {
	case res.Cancelled:
		outcome = "cancelled"
	case len(res.Errors) > 0:
		outcome = "partial"
	}
	metrics.BatchRuns.WithLabelValues(outcome).Inc()

	b.logger.Info("batch recalculation finished",
		zap.String("outcome", outcome),
		zap.Int("jobs", res.Jobs),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("deleted", res.Deleted),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (b *BatchRecalculation) runOne(ctx context.Context, id uuid.UUID, purgeUnchecked bool, res *BatchResult) {
	res.Jobs++
	r, err := b.safeRecalculate(ctx, id, purgeUnchecked)
	if r != nil {
		res.Created += r.Created
		res.Updated += r.Updated
		res.Skipped += r.Skipped
		res.Deleted += r.Deleted
	}
	if err != nil {
		metrics.BatchJobErrors.Inc()
		res.Errors = append(res.Errors, JobError{JobID: id, Error: err.Error()})
		b.logger.Warn("job recalculation failed", zap.String("job_id", id.String()), zap.String("status", "error"), zap.Error(err))
		return
	}
	b.logger.Debug("job recalculation done", zap.String("job_id", id.String()), zap.String("status", "ok"))
}

func (b *BatchRecalculation) safeRecalculate(ctx context.Context, id uuid.UUID, purgeUnchecked bool) (r *RecalcResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("job recalculation panicked", zap.String("job_id", id.String()), zap.ByteString("stack", debug.Stack()))
			r, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return b.recalc.RecalculateJobByID(ctx, id, purgeUnchecked)
}
