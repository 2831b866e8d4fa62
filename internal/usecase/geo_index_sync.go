package usecase

import (
	"context"
	"fmt"

	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/match"
	"hotlist/internal/infrastructure/search"
	"hotlist/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GeocodedCandidateLister interface {
	ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]candidate.Candidate, error)
}

type GeocodedJobLister interface {
	ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]job.Job, error)
}

type DocumentIndexer interface {
	EnsureIndex(ctx context.Context, index string, recreate bool) error
	Index(ctx context.Context, index string, docs []search.Document) (int, error)
	Remove(ctx context.Context, index string, id uuid.UUID) error
}

type IndexSyncResult struct {
	Candidates int `json:"candidates"`
	Jobs       int `json:"jobs"`
}

// GeoIndexSync copies coordinates of visible candidates and live jobs from
// the primary store into the search indices.
type GeoIndexSync struct {
	candidates     GeocodedCandidateLister
	jobs           GeocodedJobLister
	indexer        DocumentIndexer
	candidateIndex string
	jobIndex       string
	pageSize       int
	logger         *zap.Logger
}

func NewGeoIndexSync(candidates GeocodedCandidateLister, jobs GeocodedJobLister, indexer DocumentIndexer, candidateIndex, jobIndex string, pageSize int, log *zap.Logger) *GeoIndexSync {
	if candidateIndex == "" {
		candidateIndex = search.DefaultCandidateIndex
	}
	if jobIndex == "" {
		jobIndex = search.DefaultJobIndex
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &GeoIndexSync{
		candidates:     candidates,
		jobs:           jobs,
		indexer:        indexer,
		candidateIndex: candidateIndex,
		jobIndex:       jobIndex,
		pageSize:       pageSize,
		logger:         logger.OrNop(log),
	}
}

// Sync writes every document again. With recreate the indices are rebuilt,
// which also drops entries of hidden candidates and deleted jobs.
func (s *GeoIndexSync) Sync(ctx context.Context, recreate bool) (*IndexSyncResult, error) {
	for _, idx := range []string{s.candidateIndex, s.jobIndex} {
		if err := s.indexer.EnsureIndex(ctx, idx, recreate); err != nil {
			return nil, err
		}
	}

	res := &IndexSyncResult{}
	after := uuid.Nil
	for {
		page, err := s.candidates.ListGeocoded(ctx, after, s.pageSize)
		if err != nil {
			return res, fmt.Errorf("list geocoded candidates: %w", err)
		}
		docs := make([]search.Document, 0, len(page))
		for _, c := range page {
			if c.Coordinate == nil {
				continue
			}
			docs = append(docs, search.Document{ID: c.ID, Coordinate: *c.Coordinate})
		}
		n, err := s.indexer.Index(ctx, s.candidateIndex, docs)
		if err != nil {
			return res, err
		}
		res.Candidates += n
		if len(page) < s.pageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	after = uuid.Nil
	for {
		page, err := s.jobs.ListGeocoded(ctx, after, s.pageSize)
		if err != nil {
			return res, fmt.Errorf("list geocoded jobs: %w", err)
		}
		docs := make([]search.Document, 0, len(page))
		for _, j := range page {
			if j.Coordinate == nil {
				continue
			}
			docs = append(docs, search.Document{ID: j.ID, Coordinate: *j.Coordinate})
		}
		n, err := s.indexer.Index(ctx, s.jobIndex, docs)
		if err != nil {
			return res, err
		}
		res.Jobs += n
		if len(page) < s.pageSize {
			break
		}
		after = page[len(page)-1].ID
	}

	s.logger.Info("geo index synced", zap.Int("candidates", res.Candidates), zap.Int("jobs", res.Jobs))
	return res, nil
}

// Remove drops one entity from its index, for a candidate that was hidden or
// a job that was deleted since the last sync.
func (s *GeoIndexSync) Remove(ctx context.Context, ref match.EntityRef) error {
	index := s.jobIndex
	if ref.Kind == match.EntityCandidate {
		index = s.candidateIndex
	}
	if err := s.indexer.Remove(ctx, index, ref.ID); err != nil {
		return err
	}
	s.logger.Info("geo index entry removed", zap.String("entity", string(ref.Kind)), zap.String("id", ref.ID.String()))
	return nil
}
