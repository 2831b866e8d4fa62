package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"hotlist/internal/database"
	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/match"
	"hotlist/internal/domain/profile"
	"hotlist/internal/repository"

	"github.com/google/uuid"
)

type pairKey struct {
	job, candidate uuid.UUID
}

// memMatches mirrors the SQL semantics of PostgresMatchRepository.
type memMatches struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*match.Match

	deletedJobs      map[uuid.UUID]bool
	hiddenCandidates map[uuid.UUID]bool

	failUpsertOn uuid.UUID
	listCalls    int
	lastFilter   repository.MatchFilter
}

func newMemMatches() *memMatches {
	return &memMatches{
		rows:             map[uuid.UUID]*match.Match{},
		deletedJobs:      map[uuid.UUID]bool{},
		hiddenCandidates: map[uuid.UUID]bool{},
	}
}

func (r *memMatches) put(m match.Match) *match.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = match.StatusNew
	}
	cp := m
	r.rows[m.ID] = &cp
	return &cp
}

func (r *memMatches) byPair(jobID, candID uuid.UUID) *match.Match {
	for _, m := range r.rows {
		if m.JobID == jobID && m.CandidateID == candID {
			return m
		}
	}
	return nil
}

func (r *memMatches) WithTx(database.Querier) repository.MatchRepository { return r }

func (r *memMatches) FindByID(_ context.Context, id uuid.UUID) (*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMatches) FindByPair(_ context.Context, jobID, candID uuid.UUID) (*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.byPair(jobID, candID)
	if m == nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMatches) Upsert(_ context.Context, s repository.MatchScores, now time.Time) (repository.UpsertOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.CandidateID == r.failUpsertOn {
		return repository.OutcomeSkipped, errors.New("constraint violation")
	}
	if m := r.byPair(s.JobID, s.CandidateID); m != nil {
		if m.AICheckedAt != nil || m.Status != match.StatusNew {
			return repository.OutcomeSkipped, nil
		}
		m.DistanceKm, m.KeywordScore, m.MatchedKeywords, m.PreScore = s.DistanceKm, s.KeywordScore, s.MatchedKeywords, s.PreScore
		m.Stale, m.StaleReason, m.StaleSince = false, nil, nil
		m.UpdatedAt = now
		return repository.OutcomeUpdated, nil
	}
	id := uuid.New()
	r.rows[id] = &match.Match{
		ID: id, JobID: s.JobID, CandidateID: s.CandidateID,
		DistanceKm: s.DistanceKm, KeywordScore: s.KeywordScore, MatchedKeywords: s.MatchedKeywords, PreScore: s.PreScore,
		Status: match.StatusNew, CreatedAt: now, UpdatedAt: now,
	}
	return repository.OutcomeCreated, nil
}

func (r *memMatches) deleteWhere(pred func(*match.Match) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.rows {
		if pred(m) {
			delete(r.rows, id)
			n++
		}
	}
	return n
}

func (r *memMatches) DeleteUncheckedForJob(_ context.Context, jobID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(m *match.Match) bool {
		return m.JobID == jobID && m.Status == match.StatusNew && m.AICheckedAt == nil
	}), nil
}

func (r *memMatches) DeleteUncheckedForCandidate(_ context.Context, candID uuid.UUID) (int64, error) {
	return r.deleteWhere(func(m *match.Match) bool {
		return m.CandidateID == candID && m.Status == match.StatusNew && m.AICheckedAt == nil
	}), nil
}

func (r *memMatches) MarkStale(_ context.Context, ref match.EntityRef, reason string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.rows {
		owner := m.JobID
		if ref.Kind == match.EntityCandidate {
			owner = m.CandidateID
		}
		if owner != ref.ID || m.Stale {
			continue
		}
		rs, ts := reason, now
		m.Stale, m.StaleReason, m.StaleSince = true, &rs, &ts
		n++
	}
	return n, nil
}

func (r *memMatches) DeleteForDeletedJobs(context.Context) (int64, error) {
	return r.deleteWhere(func(m *match.Match) bool { return r.deletedJobs[m.JobID] }), nil
}

func (r *memMatches) DeleteUncheckedForHiddenCandidates(context.Context) (int64, error) {
	return r.deleteWhere(func(m *match.Match) bool {
		return r.hiddenCandidates[m.CandidateID] && m.Status == match.StatusNew && m.AICheckedAt == nil
	}), nil
}

func (r *memMatches) UpdateStatus(_ context.Context, id uuid.UUID, from, to match.Status, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || m.Status != from {
		return false, nil
	}
	m.Status, m.UpdatedAt = to, now
	return true, nil
}

func (r *memMatches) MarkPlaced(_ context.Context, id uuid.UUID, from match.Status, notes *string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || m.Status != from {
		return false, nil
	}
	ts := now
	m.Status, m.PlacedAt, m.PlacedNotes, m.UpdatedAt = match.StatusPlaced, &ts, notes, now
	return true, nil
}

func (r *memMatches) ApplyAIAssessment(_ context.Context, id uuid.UUID, score float64, explanation string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return false, nil
	}
	sc, ex, ts := score, explanation, now
	m.AIScore, m.AIExplanation, m.AICheckedAt = &sc, &ex, &ts
	if m.Status == match.StatusNew {
		m.Status = match.StatusAIChecked
	}
	return true, nil
}

func (r *memMatches) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *memMatches) List(_ context.Context, f repository.MatchFilter, _ repository.MatchSort, limit, offset int) (repository.MatchPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastFilter = f

	items := []match.Match{}
	for _, m := range r.rows {
		if f.JobID != nil && m.JobID != *f.JobID {
			continue
		}
		if f.MinPreScore != nil && (m.PreScore == nil || *m.PreScore < *f.MinPreScore) {
			continue
		}
		items = append(items, *m)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DistanceKm < items[j].DistanceKm })
	total := len(items)
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return repository.MatchPage{Items: items, Total: total}, nil
}

func (r *memMatches) all() []match.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]match.Match, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, *m)
	}
	return out
}

type fakeGeo struct {
	candidates []repository.CandidateDistance
	jobs       []repository.JobDistance
	err        error
	calls      int
}

func (g *fakeGeo) CandidatesWithin(context.Context, profile.Coordinate, float64) ([]repository.CandidateDistance, error) {
	g.calls++
	return g.candidates, g.err
}

func (g *fakeGeo) JobsWithin(context.Context, profile.Coordinate, float64) ([]repository.JobDistance, error) {
	g.calls++
	return g.jobs, g.err
}

type fakeJobFinder map[uuid.UUID]job.Job

func (f fakeJobFinder) FindByID(_ context.Context, id uuid.UUID) (*job.Job, error) {
	j, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

type fakeCandidateFinder map[uuid.UUID]candidate.Candidate

func (f fakeCandidateFinder) FindByID(_ context.Context, id uuid.UUID) (*candidate.Candidate, error) {
	c, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type fakeTx struct {
	commits, rollbacks *int
}

func (fakeTx) Exec(context.Context, string, ...any) (int64, error)          { return 0, nil }
func (fakeTx) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }
func (fakeTx) QueryRow(context.Context, string, ...any) database.Row        { return nil }
func (t fakeTx) Commit(context.Context) error {
	*t.commits++
	return nil
}
func (t fakeTx) Rollback(context.Context) error {
	*t.rollbacks++
	return nil
}

type fakeTransactor struct {
	commits, rollbacks int
}

func (f *fakeTransactor) Begin(context.Context) (database.Tx, error) {
	return fakeTx{commits: &f.commits, rollbacks: &f.rollbacks}, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateMatches(context.Context) error {
	c.calls++
	return nil
}
