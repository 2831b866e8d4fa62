package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotlist/internal/database"
	"hotlist/internal/domain/match"

	"github.com/google/uuid"
)

// UpsertOutcome tells what an upsert did to the pair row.
type UpsertOutcome int

const (
	OutcomeSkipped UpsertOutcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o UpsertOutcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	}
	return "skipped"
}

// MatchScores are the geo and keyword fields a recalculation writes.
type MatchScores struct {
	JobID           uuid.UUID
	CandidateID     uuid.UUID
	DistanceKm      float64
	KeywordScore    float64
	MatchedKeywords []string
	PreScore        *float64
}

type MatchFilter struct {
	JobID           *uuid.UUID
	CandidateID     *uuid.UUID
	Statuses        []match.Status
	StaleOnly       bool
	MinKeywordScore *float64
	MinPreScore     *float64
	AIChecked       *bool
}

type SortField string

const (
	SortPreScore     SortField = "pre_score"
	SortDistance     SortField = "distance"
	SortKeywordScore SortField = "keyword_score"
	SortAIScore      SortField = "ai_score"
	SortCreatedAt    SortField = "created_at"
)

var sortColumns = map[SortField]string{
	SortPreScore:     "pre_score",
	SortDistance:     "distance_km",
	SortKeywordScore: "keyword_score",
	SortAIScore:      "ai_score",
	SortCreatedAt:    "created_at",
}

type MatchSort struct {
	Field SortField
	Desc  bool
}

// DefaultMatchSort lists the best pre-scored matches first.
func DefaultMatchSort() MatchSort {
	return MatchSort{Field: SortPreScore, Desc: true}
}

// ParseMatchSort reads "field" or "field:asc|desc". An empty string yields
// the default sort.
func ParseMatchSort(s string) (MatchSort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMatchSort(), nil
	}
	field, dir, _ := strings.Cut(s, ":")
	ms := MatchSort{Field: SortField(field), Desc: field != string(SortDistance)}
	if _, ok := sortColumns[ms.Field]; !ok {
		return MatchSort{}, fmt.Errorf("unknown sort field %q", field)
	}
	switch dir {
	case "":
	case "asc":
		ms.Desc = false
	case "desc":
		ms.Desc = true
	default:
		return MatchSort{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return ms, nil
}

func (s MatchSort) orderBy() string {
	col, ok := sortColumns[s.Field]
	if !ok {
		col = sortColumns[SortPreScore]
		s.Desc = true
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return col + " " + dir + " NULLS LAST, id ASC"
}

type MatchPage struct {
	Items []match.Match `json:"items"`
	Total int           `json:"total"`
}

type MatchRepository interface {
	// WithTx binds the repository to a transaction.
	WithTx(q database.Querier) MatchRepository

	FindByID(ctx context.Context, id uuid.UUID) (*match.Match, error)
	FindByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*match.Match, error)
	// Upsert creates the pair or refreshes its scores. AI-checked rows are
	// left untouched and reported as skipped.
	Upsert(ctx context.Context, s MatchScores, now time.Time) (UpsertOutcome, error)
	DeleteUncheckedForJob(ctx context.Context, jobID uuid.UUID) (int64, error)
	DeleteUncheckedForCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error)
	MarkStale(ctx context.Context, ref match.EntityRef, reason string, now time.Time) (int64, error)
	DeleteForDeletedJobs(ctx context.Context) (int64, error)
	DeleteUncheckedForHiddenCandidates(ctx context.Context) (int64, error)
	// UpdateStatus moves a match from one status to another. It reports false
	// when the row is gone or its status is no longer from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to match.Status, now time.Time) (bool, error)
	MarkPlaced(ctx context.Context, id uuid.UUID, from match.Status, notes *string, now time.Time) (bool, error)
	ApplyAIAssessment(ctx context.Context, id uuid.UUID, score float64, explanation string, now time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, f MatchFilter, sort MatchSort, limit, offset int) (MatchPage, error)
}

type PostgresMatchRepository struct {
	db database.Querier
}

func NewPostgresMatchRepository(db database.Querier) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db}
}

func (r *PostgresMatchRepository) WithTx(q database.Querier) MatchRepository {
	return &PostgresMatchRepository{db: q}
}

const matchColumns = `id, job_id, candidate_id, distance_km, keyword_score, matched_keywords, pre_score,
	ai_score, ai_explanation, ai_checked_at, status, stale, stale_reason, stale_since,
	placed_at, placed_notes, created_at, updated_at`

func scanMatch(row database.Row, extra ...any) (*match.Match, error) {
	var (
		m      match.Match
		kws    []byte
		status string
	)
	dest := []any{
		&m.ID, &m.JobID, &m.CandidateID, &m.DistanceKm, &m.KeywordScore, &kws, &m.PreScore,
		&m.AIScore, &m.AIExplanation, &m.AICheckedAt, &status, &m.Stale, &m.StaleReason, &m.StaleSince,
		&m.PlacedAt, &m.PlacedNotes, &m.CreatedAt, &m.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m.Status = match.Status(status)

	matched, err := decodeStrings(kws)
	if err != nil {
		return nil, fmt.Errorf("match %s keywords: %w", m.ID, err)
	}
	if matched == nil {
		matched = []string{}
	}
	m.MatchedKeywords = matched
	return &m, nil
}

func (r *PostgresMatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*match.Match, error) {
	m, err := scanMatch(r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *PostgresMatchRepository) FindByPair(ctx context.Context, jobID, candidateID uuid.UUID) (*match.Match, error) {
	m, err := scanMatch(r.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE job_id = $1 AND candidate_id = $2`,
		jobID, candidateID,
	))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// Upsert relies on the (job_id, candidate_id) unique constraint, so two
// concurrent recalculations of the same pair cannot create duplicates. The
// conflict update is limited to unreviewed NEW rows, so a checked row
// returns no row at all.
func (r *PostgresMatchRepository) Upsert(ctx context.Context, s MatchScores, now time.Time) (UpsertOutcome, error) {
	kws, err := stringsArg(s.MatchedKeywords)
	if err != nil {
		return OutcomeSkipped, err
	}

	var (
		id       uuid.UUID
		inserted bool
	)
	err = r.db.QueryRow(ctx,
		`INSERT INTO matches (id, job_id, candidate_id, distance_km, keyword_score, matched_keywords, pre_score, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, 'NEW', $8, $8)
		 ON CONFLICT (job_id, candidate_id) DO UPDATE SET
			distance_km = EXCLUDED.distance_km,
			keyword_score = EXCLUDED.keyword_score,
			matched_keywords = EXCLUDED.matched_keywords,
			pre_score = EXCLUDED.pre_score,
			stale = false,
			stale_reason = NULL,
			stale_since = NULL,
			updated_at = EXCLUDED.updated_at
		 WHERE matches.ai_checked_at IS NULL AND matches.status = 'NEW'
		 RETURNING id, (xmax = 0) AS inserted`,
		uuid.New(), s.JobID, s.CandidateID, s.DistanceKm, s.KeywordScore, kws, s.PreScore, now,
	).Scan(&id, &inserted)
	if err != nil {
		if database.IsNoRows(err) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, err
	}
	if inserted {
		return OutcomeCreated, nil
	}
	return OutcomeUpdated, nil
}

func (r *PostgresMatchRepository) DeleteUncheckedForJob(ctx context.Context, jobID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM matches WHERE job_id = $1 AND status = 'NEW' AND ai_checked_at IS NULL`, jobID)
}

func (r *PostgresMatchRepository) DeleteUncheckedForCandidate(ctx context.Context, candidateID uuid.UUID) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM matches WHERE candidate_id = $1 AND status = 'NEW' AND ai_checked_at IS NULL`, candidateID)
}

// MarkStale flags every match of the entity that is not already stale, so
// the first reason and timestamp win.
func (r *PostgresMatchRepository) MarkStale(ctx context.Context, ref match.EntityRef, reason string, now time.Time) (int64, error) {
	var column string
	switch ref.Kind {
	case match.EntityCandidate:
		column = "candidate_id"
	case match.EntityJob:
		column = "job_id"
	default:
		return 0, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
	return r.db.Exec(ctx,
		`UPDATE matches SET stale = true, stale_reason = $2, stale_since = $3, updated_at = $3
		 WHERE `+column+` = $1 AND stale = false`,
		ref.ID, reason, now,
	)
}

func (r *PostgresMatchRepository) DeleteForDeletedJobs(ctx context.Context) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM matches m USING jobs j
		 WHERE m.job_id = j.id AND j.deleted_at IS NOT NULL`)
}

func (r *PostgresMatchRepository) DeleteUncheckedForHiddenCandidates(ctx context.Context) (int64, error) {
	return r.db.Exec(ctx,
		`DELETE FROM matches m USING candidates c
		 WHERE m.candidate_id = c.id AND c.hidden = true
		   AND m.status = 'NEW' AND m.ai_checked_at IS NULL`)
}

func (r *PostgresMatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to match.Status, now time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		id, string(from), string(to), now,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) MarkPlaced(ctx context.Context, id uuid.UUID, from match.Status, notes *string, now time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET status = 'PLACED', placed_at = $3, placed_notes = $4, updated_at = $3
		 WHERE id = $1 AND status = $2`,
		id, string(from), now, notes,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ApplyAIAssessment stores the external score and freezes the geo and
// keyword fields. A NEW match advances to AI_CHECKED.
func (r *PostgresMatchRepository) ApplyAIAssessment(ctx context.Context, id uuid.UUID, score float64, explanation string, now time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE matches SET
			ai_score = $2, ai_explanation = $3, ai_checked_at = $4, updated_at = $4,
			status = CASE WHEN status = 'NEW' THEN 'AI_CHECKED' ELSE status END
		 WHERE id = $1`,
		id, score, explanation, now,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresMatchRepository) List(ctx context.Context, f MatchFilter, sort MatchSort, limit, offset int) (MatchPage, error) {
	limit = clampLimit(limit, 50, 500)
	if offset < 0 {
		offset = 0
	}

	where, args, err := f.where()
	if err != nil {
		return MatchPage{}, err
	}
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM matches %s ORDER BY %s LIMIT $%d OFFSET $%d`,
			matchColumns, where, sort.orderBy(), len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return MatchPage{}, err
	}
	defer rows.Close()

	page := MatchPage{Items: make([]match.Match, 0)}
	for rows.Next() {
		var total int64
		m, err := scanMatch(rows, &total)
		if err != nil {
			return MatchPage{}, err
		}
		page.Total = int(total)
		page.Items = append(page.Items, *m)
	}
	if err := rows.Err(); err != nil {
		return MatchPage{}, err
	}
	rows.Close()

	// The window count comes with the rows, so a page past the end needs
	// its own count.
	if len(page.Items) == 0 && offset > 0 {
		var total int64
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM matches `+where, args[:len(args)-2]...).Scan(&total); err != nil {
			return MatchPage{}, err
		}
		page.Total = int(total)
	}
	return page, nil
}

func (f MatchFilter) where() (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.JobID != nil {
		add("job_id = $%d", *f.JobID)
	}
	if f.CandidateID != nil {
		add("candidate_id = $%d", *f.CandidateID)
	}
	if len(f.Statuses) > 0 {
		names := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			names = append(names, string(s))
		}
		arg, err := jsonArg(names)
		if err != nil {
			return "", nil, err
		}
		add("status IN (SELECT jsonb_array_elements_text($%d::jsonb))", arg)
	}
	if f.StaleOnly {
		conds = append(conds, "stale = true")
	}
	if f.MinKeywordScore != nil {
		add("keyword_score >= $%d", *f.MinKeywordScore)
	}
	if f.MinPreScore != nil {
		add("pre_score >= $%d", *f.MinPreScore)
	}
	if f.AIChecked != nil {
		if *f.AIChecked {
			conds = append(conds, "ai_checked_at IS NOT NULL")
		} else {
			conds = append(conds, "ai_checked_at IS NULL")
		}
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}
