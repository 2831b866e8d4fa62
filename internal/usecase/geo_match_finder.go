package usecase

import (
	"context"

	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/logger"
	"hotlist/internal/repository"

	"go.uber.org/zap"
)

// GeoMatchFinder resolves in-radius counterparts for one entity. Entities
// without a coordinate yield no results.
type GeoMatchFinder struct {
	index  repository.GeoIndex
	logger *zap.Logger
}

func NewGeoMatchFinder(index repository.GeoIndex, log *zap.Logger) *GeoMatchFinder {
	return &GeoMatchFinder{index: index, logger: logger.OrNop(log)}
}

func (f *GeoMatchFinder) FindCandidatesWithinRadius(ctx context.Context, j job.Job, radiusKm float64) ([]repository.CandidateDistance, error) {
	if j.Coordinate == nil {
		f.logger.Info("job has no coordinate, skipping radius search", zap.String("job_id", j.ID.String()))
		return []repository.CandidateDistance{}, nil
	}
	return f.index.CandidatesWithin(ctx, *j.Coordinate, radiusKm)
}

func (f *GeoMatchFinder) FindJobsWithinRadius(ctx context.Context, c candidate.Candidate, radiusKm float64) ([]repository.JobDistance, error) {
	if c.Coordinate == nil {
		f.logger.Info("candidate has no coordinate, skipping radius search", zap.String("candidate_id", c.ID.String()))
		return []repository.JobDistance{}, nil
	}
	return f.index.JobsWithin(ctx, *c.Coordinate, radiusKm)
}
