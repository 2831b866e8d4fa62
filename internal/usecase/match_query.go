package usecase

import (
	"context"
	"fmt"
	"time"

	"hotlist/internal/domain/match"
	"hotlist/internal/logger"
	"hotlist/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type MatchListParams struct {
	JobID           *uuid.UUID
	CandidateID     *uuid.UUID
	Statuses        []match.Status
	StaleOnly       bool
	MinKeywordScore *float64
	MinPreScore     *float64
	// GoodOnly keeps matches whose pre-score reaches the good match threshold.
	GoodOnly  bool
	AIChecked *bool
	Sort      string
	Limit     int
	Offset    int
}

type MatchLister interface {
	List(ctx context.Context, f repository.MatchFilter, sort repository.MatchSort, limit, offset int) (repository.MatchPage, error)
}

type MatchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type MatchQueryUsecase interface {
	List(ctx context.Context, p MatchListParams) (*repository.MatchPage, error)
}

type MatchQuery struct {
	matches        MatchLister
	cache          MatchCache
	goodMatchScore float64
	ttl            time.Duration
	logger         *zap.Logger
}

func NewMatchQuery(matches MatchLister, cache MatchCache, goodMatchScore float64, ttl time.Duration, log *zap.Logger) *MatchQuery {
	return &MatchQuery{
		matches:        matches,
		cache:          cache,
		goodMatchScore: goodMatchScore,
		ttl:            ttl,
		logger:         logger.OrNop(log),
	}
}

type normalizedMatchQuery struct {
	filter repository.MatchFilter
	sort   repository.MatchSort
	limit  int
	offset int
}

func (u *MatchQuery) normalize(p MatchListParams) (normalizedMatchQuery, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return normalizedMatchQuery{}, ErrInvalidInput
	}
	if p.MinKeywordScore != nil && (*p.MinKeywordScore < 0 || *p.MinKeywordScore > 1) {
		return normalizedMatchQuery{}, fmt.Errorf("%w: min keyword score must be within 0..1", ErrInvalidInput)
	}
	sort, err := repository.ParseMatchSort(p.Sort)
	if err != nil {
		return normalizedMatchQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	limit := p.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	minPre := p.MinPreScore
	if p.GoodOnly && (minPre == nil || *minPre < u.goodMatchScore) {
		threshold := u.goodMatchScore
		minPre = &threshold
	}

	return normalizedMatchQuery{
		filter: repository.MatchFilter{
			JobID:           p.JobID,
			CandidateID:     p.CandidateID,
			Statuses:        p.Statuses,
			StaleOnly:       p.StaleOnly,
			MinKeywordScore: p.MinKeywordScore,
			MinPreScore:     minPre,
			AIChecked:       p.AIChecked,
		},
		sort:   sort,
		limit:  limit,
		offset: p.Offset,
	}, nil
}

// List serves from the cache when possible. Cache failures fall through to
// the store.
func (u *MatchQuery) List(ctx context.Context, p MatchListParams) (*repository.MatchPage, error) {
	q, err := u.normalize(p)
	if err != nil {
		return nil, err
	}

	key := MatchListCacheKey(q)
	if u.cache != nil {
		var cached repository.MatchPage
		hit, err := u.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			u.logger.Warn("match list cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	page, err := u.matches.List(ctx, q.filter, q.sort, q.limit, q.offset)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	if u.cache != nil {
		if err := u.cache.SetJSON(ctx, key, page, u.ttl); err != nil {
			u.logger.Warn("match list cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return &page, nil
}
