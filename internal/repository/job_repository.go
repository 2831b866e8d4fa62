package repository

import (
	"context"
	"fmt"
	"time"

	"hotlist/internal/database"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/profile"

	"github.com/google/uuid"
)

type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]job.Job, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	// ListIDs pages over jobs that are not deleted, in id order.
	ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
	// ListActiveGeocodedIDs pages over jobs that are not deleted and have a
	// coordinate. These are the jobs a batch recalculation visits.
	ListActiveGeocodedIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
	ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]job.Job, error)
	UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error)
}

type PostgresJobRepository struct {
	db database.Querier
}

func NewPostgresJobRepository(db database.Querier) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, title, description, company, postal_code, city, latitude, longitude, deleted_at, ` +
	classificationColumns + `, created_at, updated_at`

func scanJob(row database.Row, extra ...any) (*job.Job, error) {
	var (
		j        job.Job
		lat, lon *float64
		cls      classificationRow
	)
	dest := []any{&j.ID, &j.Title, &j.Description, &j.Company, &j.PostalCode, &j.City, &lat, &lon, &j.DeletedAt}
	dest = append(dest, cls.dest()...)
	dest = append(dest, &j.CreatedAt, &j.UpdatedAt)
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	j.Coordinate = profile.NewCoordinate(lat, lon)

	var err error
	if j.Classification, err = cls.classification(); err != nil {
		return nil, fmt.Errorf("job %s classification: %w", j.ID, err)
	}
	return &j, nil
}

// FindByID returns soft-deleted jobs too; callers decide what deletion means.
func (r *PostgresJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*job.Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return j, nil
}

func (r *PostgresJobRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]job.Job, error) {
	if len(ids) == 0 {
		return []job.Job{}, nil
	}
	arg, err := jsonArg(uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE id IN (SELECT value::uuid FROM jsonb_array_elements_text($1::jsonb))
		 ORDER BY id`, arg)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PostgresJobRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM jobs WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&one)
	if err != nil {
		if database.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *PostgresJobRepository) ListIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM jobs
		 WHERE deleted_at IS NULL AND id > $1
		 ORDER BY id
		 LIMIT $2`,
		afterID, clampLimit(limit, 200, 1000),
	)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func (r *PostgresJobRepository) ListActiveGeocodedIDs(ctx context.Context, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM jobs
		 WHERE deleted_at IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL AND id > $1
		 ORDER BY id
		 LIMIT $2`,
		afterID, clampLimit(limit, 200, 1000),
	)
	if err != nil {
		return nil, err
	}
	return collectIDs(rows)
}

func (r *PostgresJobRepository) ListGeocoded(ctx context.Context, afterID uuid.UUID, limit int) ([]job.Job, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE deleted_at IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL AND id > $1
		 ORDER BY id
		 LIMIT $2`,
		afterID, clampLimit(limit, 200, 1000),
	)
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}

func (r *PostgresJobRepository) UpdateClassification(ctx context.Context, id uuid.UUID, c profile.Classification) (bool, error) {
	args, err := classificationArgs(c)
	if err != nil {
		return false, err
	}
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET
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

func collectJobs(rows database.Rows) ([]job.Job, error) {
	defer rows.Close()
	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
