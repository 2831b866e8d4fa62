package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/category"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/match"
	"hotlist/internal/domain/profile"
	"hotlist/internal/domain/roles"
	"hotlist/internal/logger"
	"hotlist/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stale reasons written by change detection.
const (
	ReasonAddressChanged     = "address_changed"
	ReasonSkillsChanged      = "skills_changed"
	ReasonTitleChanged       = "title_changed"
	ReasonDescriptionChanged = "description_changed"
)

const DefaultClassifyWorkers = 4

type CandidateStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error)
	ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error)
}

type JobStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error)
	ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error)
}

type StaleMarker interface {
	MarkStale(ctx context.Context, ref match.EntityRef, reason string) (int64, error)
}

type ClassifyAllResult struct {
	Candidates int `json:"candidates"`
	Jobs       int `json:"jobs"`
	Failed     int `json:"failed"`
}

type ChangeResult struct {
	Reasons      []string `json:"reasons"`
	Reclassified bool     `json:"reclassified"`
	MarkedStale  int64    `json:"marked_stale"`
}

// ClassificationService is the only writer of the classification fields on
// candidates and jobs. The rule engine is authoritative; an external model
// may only override its output elsewhere.
type ClassificationService struct {
	candidates CandidateStore
	jobs       JobStore
	classifier *category.Classifier
	roles      *roles.Engine
	stale      StaleMarker
	workers    int
	pageSize   int
	logger     *zap.Logger

	now func() time.Time
}

func NewClassificationService(
	candidates CandidateStore,
	jobs JobStore,
	classifier *category.Classifier,
	engine *roles.Engine,
	stale StaleMarker,
	workers int,
	log *zap.Logger,
) *ClassificationService {
	if workers <= 0 {
		workers = DefaultClassifyWorkers
	}
	return &ClassificationService{
		candidates: candidates,
		jobs:       jobs,
		classifier: classifier,
		roles:      engine,
		stale:      stale,
		workers:    workers,
		pageSize:   DefaultPageSize,
		logger:     logger.OrNop(log),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CandidateClassification derives every classification field of c.
func (s *ClassificationService) CandidateClassification(c candidate.Candidate) profile.Classification {
	cat := s.classifier.DetectCategory(c.ProfileText()).Category
	titles := s.classifier.Titles(c.HeldTitles()...)

	history := make([]roles.Position, 0, len(c.WorkHistory))
	for _, w := range c.WorkHistory {
		history = append(history, roles.Position{Title: w.Title, Description: w.Description})
	}
	rr := s.roles.ClassifyCandidate(roles.Profile{
		CurrentTitle:        c.CurrentTitle,
		History:             history,
		Education:           c.Education,
		ContinuingEducation: c.ContinuingEducation,
		HeldTitles:          c.HeldTitles(),
	})

	return s.build(cat, s.classifier.ResolveCity(c.PostalCode, c.City), titles, rr)
}

// JobClassification derives every classification field of j.
func (s *ClassificationService) JobClassification(j job.Job) profile.Classification {
	cat := s.classifier.DetectCategory(j.Text()).Category
	titles := s.classifier.Titles(j.Title)
	rr := s.roles.ClassifyPosting(roles.Posting{Title: j.Title, Description: j.Description})
	return s.build(cat, s.classifier.ResolveCity(j.PostalCode, j.City), titles, rr)
}

func (s *ClassificationService) build(cat profile.Category, city *string, titles profile.TitleSet, rr roles.Result) profile.Classification {
	now := s.now()
	confidence := rr.Confidence
	reasoning := rr.Reasoning

	out := profile.Classification{
		Category:       &cat,
		ResolvedCity:   city,
		Titles:         titles,
		Roles:          rr.Strings(),
		IsLeadership:   rr.IsLeadership,
		RoleConfidence: &confidence,
		RoleReasoning:  &reasoning,
		ClassifiedAt:   &now,
	}
	// the single-title column is kept for readers that predate title sets
	if len(titles) > 0 {
		first := titles[0]
		out.LegacyTitle = &first
	}
	if rr.PrimaryRole != nil {
		primary := string(*rr.PrimaryRole)
		out.PrimaryRole = &primary
	}
	return out
}

// ClassifyCandidate returns nil when the candidate does not exist.
func (s *ClassificationService) ClassifyCandidate(ctx context.Context, id uuid.UUID) (*profile.Classification, error) {
	c, err := s.candidates.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", id, err)
	}
	if c == nil {
		return nil, nil
	}
	return s.storeCandidate(ctx, *c)
}

func (s *ClassificationService) storeCandidate(ctx context.Context, c candidate.Candidate) (*profile.Classification, error) {
	cls := s.CandidateClassification(c)
	ok, err := s.candidates.UpdateClassification(ctx, c.ID, cls)
	if err != nil {
		return nil, fmt.Errorf("store classification of candidate %s: %w", c.ID, err)
	}
	if !ok {
		return nil, nil
	}
	metrics.Classifications.WithLabelValues(string(match.EntityCandidate), string(*cls.Category)).Inc()
	s.logger.Debug("candidate classified",
		zap.String("candidate_id", c.ID.String()),
		zap.String("category", string(*cls.Category)),
		zap.Strings("roles", cls.Roles),
		zap.Bool("leadership", cls.IsLeadership),
	)
	return &cls, nil
}

// ClassifyJob returns nil when the job does not exist.
func (s *ClassificationService) ClassifyJob(ctx context.Context, id uuid.UUID) (*profile.Classification, error) {
	j, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	if j == nil {
		return nil, nil
	}
	return s.storeJob(ctx, *j)
}

func (s *ClassificationService) storeJob(ctx context.Context, j job.Job) (*profile.Classification, error) {
	cls := s.JobClassification(j)
	ok, err := s.jobs.UpdateClassification(ctx, j.ID, cls)
	if err != nil {
		return nil, fmt.Errorf("store classification of job %s: %w", j.ID, err)
	}
	if !ok {
		return nil, nil
	}
	metrics.Classifications.WithLabelValues(string(match.EntityJob), string(*cls.Category)).Inc()
	s.logger.Debug("job classified",
		zap.String("job_id", j.ID.String()),
		zap.String("category", string(*cls.Category)),
		zap.Strings("roles", cls.Roles),
	)
	return &cls, nil
}

// ClassifyAll reclassifies every visible candidate and every live job with a
// bounded worker pool. Single failures are counted and logged; only listing
// errors abort.
func (s *ClassificationService) ClassifyAll(ctx context.Context) (*ClassifyAllResult, error) {
	var candidates, jobs, failed atomic.Int64

	classify := func(kind match.EntityKind, id uuid.UUID) {
		var (
			cls *profile.Classification
			err error
		)
		if kind == match.EntityCandidate {
			cls, err = s.ClassifyCandidate(ctx, id)
		} else {
			cls, err = s.ClassifyJob(ctx, id)
		}
		switch {
		case err != nil:
			failed.Add(1)
			s.logger.Warn("classification failed", zap.String("entity", string(kind)), zap.String("id", id.String()), zap.Error(err))
		case cls == nil:
		case kind == match.EntityCandidate:
			candidates.Add(1)
		default:
			jobs.Add(1)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	sweep := func(kind match.EntityKind, list func(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)) error {
		after := uuid.Nil
		for {
			if err := gCtx.Err(); err != nil {
				return err
			}
			ids, err := list(gCtx, after, s.pageSize)
			if err != nil {
				return fmt.Errorf("list %s ids: %w", kind, err)
			}
			for _, id := range ids {
				g.Go(func() error {
					classify(kind, id)
					return nil
				})
			}
			if len(ids) < s.pageSize {
				return nil
			}
			after = ids[len(ids)-1]
		}
	}

	err := sweep(match.EntityCandidate, s.candidates.ListIDs)
	if err == nil {
		err = sweep(match.EntityJob, s.jobs.ListIDs)
	}
	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}

	res := &ClassifyAllResult{
		Candidates: int(candidates.Load()),
		Jobs:       int(jobs.Load()),
		Failed:     int(failed.Load()),
	}
	s.logger.Info("classification sweep finished",
		zap.Int("candidates", res.Candidates),
		zap.Int("jobs", res.Jobs),
		zap.Int("failed", res.Failed),
	)
	return res, err
}

// CandidateChanged reclassifies after an edit and flags the candidate's
// matches stale, once per detected reason.
func (s *ClassificationService) CandidateChanged(ctx context.Context, before, after candidate.Candidate) (*ChangeResult, error) {
	res := &ChangeResult{Reasons: CandidateChangeReasons(before, after)}
	textChanged := len(res.Reasons) > 0 ||
		!sameHistory(before.WorkHistory, after.WorkHistory) ||
		!slices.Equal(before.Education, after.Education) ||
		!slices.Equal(before.ContinuingEducation, after.ContinuingEducation)

	if textChanged {
		cls, err := s.storeCandidate(ctx, after)
		if err != nil {
			return res, err
		}
		res.Reclassified = cls != nil
	}
	return res, s.markStale(ctx, match.CandidateRef(after.ID), res)
}

// JobChanged is the job-side counterpart of CandidateChanged.
func (s *ClassificationService) JobChanged(ctx context.Context, before, after job.Job) (*ChangeResult, error) {
	res := &ChangeResult{Reasons: JobChangeReasons(before, after)}
	if len(res.Reasons) > 0 {
		cls, err := s.storeJob(ctx, after)
		if err != nil {
			return res, err
		}
		res.Reclassified = cls != nil
	}
	return res, s.markStale(ctx, match.JobRef(after.ID), res)
}

func (s *ClassificationService) markStale(ctx context.Context, ref match.EntityRef, res *ChangeResult) error {
	if s.stale == nil {
		return nil
	}
	for _, reason := range res.Reasons {
		n, err := s.stale.MarkStale(ctx, ref, reason)
		if err != nil {
			return err
		}
		res.MarkedStale += n
	}
	return nil
}

func CandidateChangeReasons(before, after candidate.Candidate) []string {
	reasons := []string{}
	if addressChanged(before.PostalCode, after.PostalCode, before.City, after.City, before.Coordinate, after.Coordinate) {
		reasons = append(reasons, ReasonAddressChanged)
	}
	if !sameFold(before.Skills, after.Skills) {
		reasons = append(reasons, ReasonSkillsChanged)
	}
	if !sameFold(before.HeldTitles(), after.HeldTitles()) {
		reasons = append(reasons, ReasonTitleChanged)
	}
	return reasons
}

func JobChangeReasons(before, after job.Job) []string {
	reasons := []string{}
	if addressChanged(before.PostalCode, after.PostalCode, before.City, after.City, before.Coordinate, after.Coordinate) {
		reasons = append(reasons, ReasonAddressChanged)
	}
	if strings.TrimSpace(before.Title) != strings.TrimSpace(after.Title) {
		reasons = append(reasons, ReasonTitleChanged)
	}
	if strings.TrimSpace(before.Description) != strings.TrimSpace(after.Description) {
		reasons = append(reasons, ReasonDescriptionChanged)
	}
	return reasons
}

func addressChanged(postalA, postalB, cityA, cityB string, a, b *profile.Coordinate) bool {
	if strings.TrimSpace(postalA) != strings.TrimSpace(postalB) {
		return true
	}
	if !strings.EqualFold(strings.TrimSpace(cityA), strings.TrimSpace(cityB)) {
		return true
	}
	switch {
	case a == nil && b == nil:
		return false
	case a == nil || b == nil:
		return true
	}
	return *a != *b
}

// sameFold compares two lists as case-insensitive sets.
func sameFold(a, b []string) bool {
	return profile.NewTitleSet(a...).Equal(profile.NewTitleSet(b...))
}

func sameHistory(a, b []profile.WorkEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i].Description) != strings.TrimSpace(b[i].Description) {
			return false
		}
	}
	return true
}
