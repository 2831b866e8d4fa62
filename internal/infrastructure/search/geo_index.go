package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"hotlist/internal/domain/candidate"
	"hotlist/internal/domain/job"
	"hotlist/internal/domain/profile"
	"hotlist/internal/logger"
	"hotlist/internal/repository"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultCandidateIndex = "hotlist-candidates"
	DefaultJobIndex       = "hotlist-jobs"

	// maxHits is the default index.max_result_window.
	maxHits = 10000
)

var ErrSearchFailed = errors.New("elasticsearch search failed")

type CandidateLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]candidate.Candidate, error)
}

type JobLoader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]job.Job, error)
}

// GeoIndex finds ids and distances in Elasticsearch and loads the entities
// from the primary store. Entities hidden or deleted after the last index
// sync are dropped.
type GeoIndex struct {
	client         *elasticsearch.Client
	candidateIndex string
	jobIndex       string
	candidates     CandidateLoader
	jobs           JobLoader
	logger         *zap.Logger
}

func NewGeoIndex(client *elasticsearch.Client, candidateIndex, jobIndex string, candidates CandidateLoader, jobs JobLoader, log *zap.Logger) *GeoIndex {
	if candidateIndex == "" {
		candidateIndex = DefaultCandidateIndex
	}
	if jobIndex == "" {
		jobIndex = DefaultJobIndex
	}
	return &GeoIndex{
		client:         client,
		candidateIndex: candidateIndex,
		jobIndex:       jobIndex,
		candidates:     candidates,
		jobs:           jobs,
		logger:         logger.OrNop(log),
	}
}

var _ repository.GeoIndex = (*GeoIndex)(nil)

type geoHit struct {
	ID         uuid.UUID
	DistanceKm float64
}

func (g *GeoIndex) CandidatesWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]repository.CandidateDistance, error) {
	hits, err := g.search(ctx, g.candidateIndex, center, radiusKm)
	if err != nil || len(hits) == 0 {
		return []repository.CandidateDistance{}, err
	}

	loaded, err := g.candidates.FindByIDs(ctx, hitIDs(hits))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]candidate.Candidate, len(loaded))
	for _, c := range loaded {
		byID[c.ID] = c
	}

	out := make([]repository.CandidateDistance, 0, len(hits))
	for _, h := range hits {
		c, ok := byID[h.ID]
		if !ok || c.Hidden || c.Coordinate == nil {
			continue
		}
		out = append(out, repository.CandidateDistance{Candidate: c, DistanceKm: h.DistanceKm})
	}
	return out, nil
}

func (g *GeoIndex) JobsWithin(ctx context.Context, center profile.Coordinate, radiusKm float64) ([]repository.JobDistance, error) {
	hits, err := g.search(ctx, g.jobIndex, center, radiusKm)
	if err != nil || len(hits) == 0 {
		return []repository.JobDistance{}, err
	}

	loaded, err := g.jobs.FindByIDs(ctx, hitIDs(hits))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]job.Job, len(loaded))
	for _, j := range loaded {
		byID[j.ID] = j
	}

	out := make([]repository.JobDistance, 0, len(hits))
	for _, h := range hits {
		j, ok := byID[h.ID]
		if !ok || j.Deleted() || j.Coordinate == nil {
			continue
		}
		out = append(out, repository.JobDistance{Job: j, DistanceKm: h.DistanceKm})
	}
	return out, nil
}

func geoDistanceQuery(center profile.Coordinate, radiusKm float64) map[string]any {
	point := map[string]any{"lat": center.Latitude, "lon": center.Longitude}
	return map[string]any{
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{
						"geo_distance": map[string]any{
							"distance":      strconv.FormatFloat(radiusKm, 'f', -1, 64) + "km",
							"distance_type": "arc",
							"location":      point,
						},
					},
				},
			},
		},
		"sort": []any{
			map[string]any{
				"_geo_distance": map[string]any{
					"location":      point,
					"order":         "asc",
					"unit":          "km",
					"distance_type": "arc",
				},
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID   string    `json:"_id"`
			Sort []float64 `json:"sort"`
		} `json:"hits"`
	} `json:"hits"`
}

func (g *GeoIndex) search(ctx context.Context, index string, center profile.Coordinate, radiusKm float64) ([]geoHit, error) {
	if radiusKm < 0 {
		return nil, nil
	}
	body, err := json.Marshal(geoDistanceQuery(center, radiusKm))
	if err != nil {
		return nil, err
	}

	size := maxHits
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, g.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		g.logger.Warn("geo index missing, run the index command", zap.String("index", index))
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchFailed, res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]geoHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			g.logger.Warn("skipping geo hit with foreign id", zap.String("index", index), zap.String("id", h.ID))
			continue
		}
		var d float64
		if len(h.Sort) > 0 {
			d = h.Sort[0]
		}
		if d > radiusKm {
			continue
		}
		out = append(out, geoHit{ID: id, DistanceKm: d})
	}
	return out, nil
}

func hitIDs(hits []geoHit) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	return ids
}
