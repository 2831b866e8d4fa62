package repository

import (
	"context"
	"fmt"
	"time"

	"hotlist/internal/database"
	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/profile"

	"github.com/google/uuid"
)

type CandidateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]candidate.Candidate, error)
	// ListIDs pages over visible candidates in id order, starting after afterID.
	ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
	ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]candidate.Candidate, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error)
}

type PostgresCandidateRepository struct {
	db database.Querier
}

func NewPostgresCandidateRepository(db database.Querier) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

const candidateColumns = `id, full_name, current_title, skills, work_history, education, continuing_education,
	postal_code, city, latitude, longitude, hidden, ` + classificationColumns + `, created_at, updated_at`

func scanCandidate(row database.Row, extra ...any) (*candidate.Candidate, error) {
	var (
		c                                candidate.Candidate
		skills, history, edu, continuing []byte
		lat, lon                         *float64
		cls                              classificationRow
	)
	dest := []any{
		&c.ID, &c.FullName, &c.CurrentTitle, &skills, &history, &edu, &continuing,
		&c.PostalCode, &c.City, &lat, &lon, &c.Hidden,
	}
	dest = append(dest, cls.dest()...)
	dest = append(dest, &c.CreatedAt, &c.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	var err error
	if c.Skills, err = decodeStrings(skills); err != nil {
		return nil, fmt.Errorf("candidate %s skills: %w", c.ID, err)
	}
	if c.WorkHistory, err = decodeWorkHistory(history); err != nil {
		return nil, fmt.Errorf("candidate %s work history: %w", c.ID, err)
	}
	if c.Education, err = decodeStrings(edu); err != nil {
		return nil, fmt.Errorf("candidate %s education: %w", c.ID, err)
	}
	if c.ContinuingEducation, err = decodeStrings(continuing); err != nil {
		return nil, fmt.Errorf("candidate %s continuing education: %w", c.ID, err)
	}
	c.Coordinate = profile.NewCoordinate(lat, lon)
	if c.Classification, err = cls.classification(); err != nil {
		return nil, fmt.Errorf("candidate %s classification: %w", c.ID, err)
	}
	return &c, nil
}

func (r *PostgresCandidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*candidate.Candidate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresCandidateRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]candidate.Candidate, error) {
	if len(ids) == 0 {
		return []candidate.Candidate{}, nil
	}
	arg, err := jsonArg(uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE id IN (SELECT value::uuid FROM jsonb_array_elements_text($1::jsonb))
		 ORDER BY id`, arg)
	if err != nil {
		return nil, err
	}
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepository) ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM candidates
		 WHERE hidden = false AND id > $1
		 ORDER BY id
		 LIMIT $2`,
		afterID, clampLimit(limit, 200, 1000),
	)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func (r *PostgresCandidateRepository) ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]candidate.Candidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE hidden = false AND latitude IS NOT NULL AND longitude IS NOT NULL AND id > $1
		 ORDER BY id
		 LIMIT $2`,
		afterID, clampLimit(limit, 200, 1000),
	)
	if err != nil {
		return nil, err
	}
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepository) UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error) {
	args, err := classificationArgs(c)
	if err != nil {
		return false, err
	}
	n, err := r.db.Exec(ctx,
		`UPDATE candidates SET
			category = $2, resolved_city = $3, titles = $4::jsonb, legacy_title = $5, roles = $6::jsonb,
			primary_role = $7, is_leadership = $8, role_confidence = $9, role_reasoning = $10,
			classified_at = $11, updated_at = $12
		 WHERE id = $1`,
		append(append([]any{id}, args...), time.Now().UTC())...,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func collectCandidates(rows database.Rows) ([]candidate.Candidate, error) {
	defer rows.Close()
	out := make([]candidate.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func collectIDs(rows database.Rows) ([]uuid.UUID, error) {
	defer rows.Close()
	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
