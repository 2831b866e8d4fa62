package repository

import (
	"context"
	"fmt"

	"hotlist/internal/database"
	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/geo"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/profile"
)

type CandidateDistance struct {
	Candidate  candidate.Candidate
	DistanceKm float64
}

type JobDistance struct {
	Job        job.Job
	DistanceKm float64
}

// GeoIndex answers radius queries around a coordinate. Results are ordered
// by ascending distance and never contain hidden candidates or deleted jobs.
type GeoIndex interface {
	CandidatesWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]CandidateDistance, error)
	JobsWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]JobDistance, error)
}

type PostgresGeoIndex struct {
	db database.Querier
}

func NewPostgresGeoIndex(db database.Querier) *PostgresGeoIndex {
	return &PostgresGeoIndex{db: db}
}

// haversineSQL uses the same earth radius as geo.DistanceKm. LEAST keeps
// ASIN inside its domain for antipodal points.
var haversineSQL = fmt.Sprintf(`%v * 2 * ASIN(LEAST(1, SQRT(
	POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
	COS(RADIANS($1)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - $2) / 2), 2)
)))`, geo.EarthRadiusKm)

// boxFilter renders the bounding-box prefilter. Arguments $4..$7 are
// min/max latitude and min/max longitude.
func boxFilter(box geo.BoundingBox) (string, []any) {
	args := []any{box.MinLat, box.MaxLat}
	if box.WrapsAntimeridian() {
		minLon, maxLon := box.MinLon, box.MaxLon
		if minLon < -180 {
			minLon += 360
		}
		if maxLon > 180 {
			maxLon -= 360
		}
		args = append(args, minLon, maxLon)
		return `latitude BETWEEN $4 AND $5 AND (longitude >= $6 OR longitude <= $7)`, args
	}
	args = append(args, box.MinLon, box.MaxLon)
	return `latitude BETWEEN $4 AND $5 AND longitude BETWEEN $6 AND $7`, args
}

func (g *PostgresGeoIndex) CandidatesWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]CandidateDistance, error) {
	if radiusKm < 0 {
		return []CandidateDistance{}, nil
	}
	box, boxArgs := boxFilter(geo.BoundingBoxAround(center, radiusKm))
	args := append([]any{center.Latitude, center.Longitude, radiusKm}, boxArgs...)

	rows, err := g.db.Query(ctx,
		`SELECT * FROM (
			SELECT `+candidateColumns+`, `+haversineSQL+` AS distance_km
			FROM candidates
			WHERE hidden = false AND latitude IS NOT NULL AND longitude IS NOT NULL AND `+box+`
		) c
		WHERE distance_km <= $3
		ORDER BY distance_km ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CandidateDistance, 0)
	for rows.Next() {
		var d float64
		c, err := scanCandidate(rows, &d)
		if err != nil {
			return nil, err
		}
		out = append(out, CandidateDistance{Candidate: *c, DistanceKm: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *PostgresGeoIndex) JobsWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]JobDistance, error) {
	if radiusKm < 0 {
		return []JobDistance{}, nil
	}
	box, boxArgs := boxFilter(geo.BoundingBoxAround(center, radiusKm))
	args := append([]any{center.Latitude, center.Longitude, radiusKm}, boxArgs...)

	rows, err := g.db.Query(ctx,
		`SELECT * FROM (
			SELECT `+jobColumns+`, `+haversineSQL+` AS distance_km
			FROM jobs
			WHERE deleted_at IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL AND `+box+`
		) j
		WHERE distance_km <= $3
		ORDER BY distance_km ASC, id ASC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]JobDistance, 0)
	for rows.Next() {
		var d float64
		j, err := scanJob(rows, &d)
		if err != nil {
			return nil, err
		}
		out = append(out, JobDistance{Job: *j, DistanceKm: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
