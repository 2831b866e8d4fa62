package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotlist/internal/database"
	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/keyword"
	"hotlist/internal/domain/match"
	"hotlist/internal/domain/prescore"
	"hotlist/internal/logger"
	"hotlist/internal/metrics"
	"hotlist/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultRadiusKm = 30.0
	DefaultPageSize = 200
)

// RecalcResult counts what one recalculation did to match rows. Skipped
// rows are AI-checked matches that were left as they were.
type RecalcResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
}

func (r *RecalcResult) add(o repository.UpsertOutcome) {
	switch o {
	case repository.OutcomeCreated:
		r.Created++
	case repository.OutcomeUpdated:
		r.Updated++
	default:
		r.Skipped++
	}
}

func (r RecalcResult) changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
}

type CleanupResult struct {
	DeletedForDeletedJobs      int64 `json:"deleted_for_deleted_jobs"`
	DeletedForHiddenCandidates int64 `json:"deleted_for_hidden_candidates"`
}

type MatchLifecycleManager interface {
	RecalculateForJob(ctx context.Context, j job.Job, purgeUnchecked bool) (*RecalcResult, error)
	RecalculateJobByID(ctx context.Context, jobID uuid.UUID, purgeUnchecked bool) (*RecalcResult, error)
	RecalculateForCandidate(ctx context.Context, c candidate.Candidate) (*RecalcResult, error)
	RecalculateCandidateByID(ctx context.Context, candidateID uuid.UUID) (*RecalcResult, error)
	MarkStale(ctx context.Context, ref match.EntityRef, reason string) (int64, error)
	CleanupOrphaned(ctx context.Context) (*CleanupResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to match.Status) (*match.Match, error)
	MarkPlaced(ctx context.Context, id uuid.UUID, notes string) (*match.Match, error)
	ApplyAIAssessment(ctx context.Context, id uuid.UUID, score float64, explanation string) (*match.Match, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Transactor opens a unit of work. database.DB satisfies it.
type Transactor interface {
	Begin(ctx context.Context) (database.Tx, error)
}

type CandidateFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error)
}

type JobFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error)
}

type MatchCacheInvalidator interface {
	InvalidateMatches(ctx context.Context) error
}

type MatchLifecycleConfig struct {
	RadiusKm float64
	PageSize int
}

type MatchLifecycle struct {
	tx         Transactor
	matches    repository.MatchRepository
	candidates CandidateFinder
	jobs       JobFinder
	finder     *GeoMatchFinder
	scorer     *prescore.Calculator
	cache      MatchCacheInvalidator
	cfg        MatchLifecycleConfig
	logger     *zap.Logger

	now func() time.Time
}

// NewMatchLifecycle wires the manager. tx and cache may be nil; without tx
// every write goes straight to matches.
func NewMatchLifecycle(
	tx Transactor,
	matches repository.MatchRepository,
	candidates CandidateFinder,
	jobs JobFinder,
	finder *GeoMatchFinder,
	scorer *prescore.Calculator,
	cache MatchCacheInvalidator,
	cfg MatchLifecycleConfig,
	log *zap.Logger,
) *MatchLifecycle {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = DefaultRadiusKm
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &MatchLifecycle{
		tx:         tx,
		matches:    matches,
		candidates: candidates,
		jobs:       jobs,
		finder:     finder,
		scorer:     scorer,
		cache:      cache,
		cfg:        cfg,
		logger:     logger.OrNop(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *MatchLifecycle) RecalculateJobByID(ctx context.Context, jobID uuid.UUID, purgeUnchecked bool) (*RecalcResult, error) {
	j, err := m.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}
	if j == nil {
		return nil, nil
	}
	return m.RecalculateForJob(ctx, *j, purgeUnchecked)
}

// RecalculateForJob rescans the radius around a job and upserts one match
// per candidate found. Upserts are committed page by page.
func (m *MatchLifecycle) RecalculateForJob(ctx context.Context, j job.Job, purgeUnchecked bool) (*RecalcResult, error) {
	start := time.Now()
	defer func() { metrics.RecalcDuration.WithLabelValues(string(match.EntityJob)).Observe(time.Since(start).Seconds()) }()

	res := &RecalcResult{}
	if j.Deleted() {
		m.logger.Info("job is deleted, skipping recalculation", zap.String("job_id", j.ID.String()))
		return res, nil
	}

	if purgeUnchecked {
		var n int64
		err := m.inTx(ctx, func(repo repository.MatchRepository) error {
			var err error
			n, err = repo.DeleteUncheckedForJob(ctx, j.ID)
			return err
		})
		if err != nil {
			return res, fmt.Errorf("purge unchecked matches of job %s: %w", j.ID, err)
		}
		res.Deleted = int(n)
		metrics.MatchWrites.WithLabelValues("deleted").Add(float64(n))
	}

	hits, err := m.finder.FindCandidatesWithinRadius(ctx, j, m.cfg.RadiusKm)
	if err != nil {
		return res, fmt.Errorf("radius search for job %s: %w", j.ID, err)
	}

	text := j.Text()
	scores := make([]repository.MatchScores, 0, len(hits))
	for _, h := range hits {
		scores = append(scores, m.score(h.Candidate, j, text, h.DistanceKm))
	}

	err = m.upsertPaged(ctx, scores, res)
	m.finish(ctx, res)
	m.logger.Info("job recalculated",
		zap.String("job_id", j.ID.String()),
		zap.Int("candidates", len(hits)),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
		zap.Int("deleted", res.Deleted),
	)
	if err != nil {
		return res, fmt.Errorf("upsert matches of job %s: %w", j.ID, err)
	}
	return res, nil
}

func (m *MatchLifecycle) RecalculateCandidateByID(ctx context.Context, candidateID uuid.UUID) (*RecalcResult, error) {
	c, err := m.candidates.FindByID(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}
	if c == nil {
		return nil, nil
	}
	return m.RecalculateForCandidate(ctx, *c)
}

// RecalculateForCandidate is the job-centric sweep for a newly eligible
// candidate.
func (m *MatchLifecycle) RecalculateForCandidate(ctx context.Context, c candidate.Candidate) (*RecalcResult, error) {
	start := time.Now()
	defer func() {
		metrics.RecalcDuration.WithLabelValues(string(match.EntityCandidate)).Observe(time.Since(start).Seconds())
	}()

	res := &RecalcResult{}
	if c.Hidden {
		m.logger.Info("candidate is hidden, skipping recalculation", zap.String("candidate_id", c.ID.String()))
		return res, nil
	}

	hits, err := m.finder.FindJobsWithinRadius(ctx, c, m.cfg.RadiusKm)
	if err != nil {
		return res, fmt.Errorf("radius search for candidate %s: %w", c.ID, err)
	}

	scores := make([]repository.MatchScores, 0, len(hits))
	for _, h := range hits {
		scores = append(scores, m.score(c, h.Job, h.Job.Text(), h.DistanceKm))
	}

	err = m.upsertPaged(ctx, scores, res)
	m.finish(ctx, res)
	m.logger.Info("candidate recalculated",
		zap.String("candidate_id", c.ID.String()),
		zap.Int("jobs", len(hits)),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("skipped", res.Skipped),
	)
	if err != nil {
		return res, fmt.Errorf("upsert matches of candidate %s: %w", c.ID, err)
	}
	return res, nil
}

func (m *MatchLifecycle) score(c candidate.Candidate, j job.Job, jobText string, distanceKm float64) repository.MatchScores {
	kw := keyword.Match(c.Skills, jobText)
	ratio := kw.Score
	dist := distanceKm

	s := repository.MatchScores{
		JobID:           j.ID,
		CandidateID:     c.ID,
		DistanceKm:      distanceKm,
		KeywordScore:    kw.Score,
		MatchedKeywords: kw.Matched,
	}
	if m.scorer != nil {
		total := m.scorer.Calculate(prescore.Inputs{
			CandidateCategory: c.Classification.Category,
			JobCategory:       j.Classification.Category,
			CandidateCity:     c.Classification.ResolvedCity,
			JobCity:           j.Classification.ResolvedCity,
			CandidateTitles:   c.Classification.EffectiveTitles(),
			JobTitles:         j.Classification.EffectiveTitles(),
			KeywordRatio:      &ratio,
			DistanceKm:        &dist,
		}).Total
		s.PreScore = &total
	}
	return s
}

// upsertPaged commits every PageSize upserts. Pages committed before a
// failure stay committed and are counted in res.
func (m *MatchLifecycle) upsertPaged(ctx context.Context, scores []repository.MatchScores, res *RecalcResult) error {
	now := m.now()
	for start := 0; start < len(scores); start += m.cfg.PageSize {
		end := min(start+m.cfg.PageSize, len(scores))
		page := RecalcResult{}
		err := m.inTx(ctx, func(repo repository.MatchRepository) error {
			for _, s := range scores[start:end] {
				outcome, err := repo.Upsert(ctx, s, now)
				if err != nil {
					return fmt.Errorf("pair job=%s candidate=%s: %w", s.JobID, s.CandidateID, err)
				}
				page.add(outcome)
			}
			return nil
		})
		if err != nil {
			return err
		}
		res.Created += page.Created
		res.Updated += page.Updated
		res.Skipped += page.Skipped
		metrics.MatchWrites.WithLabelValues("created").Add(float64(page.Created))
		metrics.MatchWrites.WithLabelValues("updated").Add(float64(page.Updated))
		metrics.MatchWrites.WithLabelValues("skipped").Add(float64(page.Skipped))
	}
	return nil
}

func (m *MatchLifecycle) inTx(ctx context.Context, fn func(repo repository.MatchRepository) error) error {
	if m.tx == nil {
		return fn(m.matches)
	}
	tx, err := m.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(m.matches.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			m.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit(ctx)
}

func (m *MatchLifecycle) finish(ctx context.Context, res *RecalcResult) {
	if res.changed() {
		m.invalidate(ctx)
	}
}

func (m *MatchLifecycle) invalidate(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.InvalidateMatches(ctx); err != nil {
		m.logger.Warn("match cache invalidation failed", zap.Error(err))
	}
}

// MarkStale flags every not yet stale match of the entity. Already stale
// matches keep their first reason and timestamp.
func (m *MatchLifecycle) MarkStale(ctx context.Context, ref match.EntityRef, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" || ref.ID == uuid.Nil {
		return 0, ErrInvalidInput
	}
	n, err := m.matches.MarkStale(ctx, ref, reason, m.now())
	if err != nil {
		return 0, fmt.Errorf("mark %s %s stale: %w", ref.Kind, ref.ID, err)
	}
	if n > 0 {
		metrics.StaleMarks.WithLabelValues(reason).Add(float64(n))
		m.invalidate(ctx)
	}
	m.logger.Debug("matches marked stale",
		zap.String("entity", string(ref.Kind)),
		zap.String("id", ref.ID.String()),
		zap.String("reason", reason),
		zap.Int64("count", n),
	)
	return n, nil
}

// CleanupOrphaned removes matches of soft-deleted jobs, and the unreviewed
// matches of hidden candidates. AI-checked matches of hidden candidates are
// kept as history.
func (m *MatchLifecycle) CleanupOrphaned(ctx context.Context) (*CleanupResult, error) {
	res := &CleanupResult{}
	err := m.inTx(ctx, func(repo repository.MatchRepository) error {
		var err error
		if res.DeletedForDeletedJobs, err = repo.DeleteForDeletedJobs(ctx); err != nil {
			return fmt.Errorf("delete matches of deleted jobs: %w", err)
		}
		if res.DeletedForHiddenCandidates, err = repo.DeleteUncheckedForHiddenCandidates(ctx); err != nil {
			return fmt.Errorf("delete matches of hidden candidates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := res.DeletedForDeletedJobs + res.DeletedForHiddenCandidates
	metrics.MatchWrites.WithLabelValues("deleted").Add(float64(total))
	if total > 0 {
		m.invalidate(ctx)
	}
	m.logger.Info("orphaned matches cleaned up",
		zap.Int64("deleted_jobs", res.DeletedForDeletedJobs),
		zap.Int64("hidden_candidates", res.DeletedForHiddenCandidates),
	)
	return res, nil
}

// UpdateStatus applies a state machine transition. It returns nil when the
// match does not exist. Moving to PLACED stamps the placement time.
// AI_CHECKED is only entered through ApplyAIAssessment, which also stamps
// ai_checked_at.
func (m *MatchLifecycle) UpdateStatus(ctx context.Context, id uuid.UUID, to match.Status) (*match.Match, error) {
	if to == match.StatusAIChecked {
		return nil, fmt.Errorf("%w: %s requires an AI assessment", match.ErrInvalidTransition, to)
	}
	if to == match.StatusPlaced {
		return m.place(ctx, id, nil)
	}

	cur, err := m.matches.FindByID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	if cur.Status == to {
		return cur, nil
	}
	if err := match.CheckTransition(cur.Status, to); err != nil {
		return nil, err
	}

	ok, err := m.matches.UpdateStatus(ctx, id, cur.Status, to, m.now())
	if err != nil {
		return nil, fmt.Errorf("update status of match %s: %w", id, err)
	}
	return m.reload(ctx, id, ok)
}

// MarkPlaced moves a match to PLACED with optional notes.
func (m *MatchLifecycle) MarkPlaced(ctx context.Context, id uuid.UUID, notes string) (*match.Match, error) {
	var n *string
	if s := strings.TrimSpace(notes); s != "" {
		n = &s
	}
	return m.place(ctx, id, n)
}

func (m *MatchLifecycle) place(ctx context.Context, id uuid.UUID, notes *string) (*match.Match, error) {
	cur, err := m.matches.FindByID(ctx, id)
	if err != nil || cur == nil {
		return nil, err
	}
	if cur.Status == match.StatusPlaced && notes == nil {
		return cur, nil
	}
	if err := match.CheckTransition(cur.Status, match.StatusPlaced); err != nil {
		return nil, err
	}

	ok, err := m.matches.MarkPlaced(ctx, id, cur.Status, notes, m.now())
	if err != nil {
		return nil, fmt.Errorf("mark match %s placed: %w", id, err)
	}
	return m.reload(ctx, id, ok)
}

// ApplyAIAssessment records the external score. It returns nil when the
// match does not exist.
func (m *MatchLifecycle) ApplyAIAssessment(ctx context.Context, id uuid.UUID, score float64, explanation string) (*match.Match, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("%w: ai score %.2f outside 0..100", ErrInvalidInput, score)
	}
	ok, err := m.matches.ApplyAIAssessment(ctx, id, score, strings.TrimSpace(explanation), m.now())
	if err != nil {
		return nil, fmt.Errorf("apply ai assessment to match %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	m.invalidate(ctx)
	return m.matches.FindByID(ctx, id)
}

func (m *MatchLifecycle) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ok, err := m.matches.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete match %s: %w", id, err)
	}
	if ok {
		m.invalidate(ctx)
	}
	return ok, nil
}

// reload returns the row after a conditional write. A write that matched no
// row means the match was deleted or moved on concurrently.
func (m *MatchLifecycle) reload(ctx context.Context, id uuid.UUID, written bool) (*match.Match, error) {
	after, err := m.matches.FindByID(ctx, id)
	if err != nil || after == nil {
		return nil, err
	}
	if !written {
		return nil, fmt.Errorf("%w: %s is now %s", ErrConflict, id, after.Status)
	}
	m.invalidate(ctx)
	return after, nil
}
