package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hotlist/internal/domain/profile"
	"hotlist/internal/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const locationMapping = `{"mappings":{"properties":{"location":{"type":"geo_point"}}}}`

// Document is one indexed coordinate.
type Document struct {
	ID         uuid.UUID
	Coordinate profile.Coordinate
}

type Indexer struct {
	client *elasticsearch.Client
	logger *zap.Logger
}

func NewIndexer(client *elasticsearch.Client, log *zap.Logger) *Indexer {
	return &Indexer{client: client, logger: logger.OrNop(log)}
}

// EnsureIndex creates index with a geo_point mapping when it does not exist.
// With recreate set an existing index is dropped first.
func (ix *Indexer) EnsureIndex(ctx context.Context, index string, recreate bool) error {
	exists, err := ix.exists(ctx, index)
	if err != nil {
		return err
	}
	if exists && recreate {
		res, err := ix.client.Indices.Delete([]string{index}, ix.client.Indices.Delete.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("delete index %s: %w", index, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("delete index %s: %s", index, res.Status())
		}
		exists = false
	}
	if exists {
		return nil
	}

	res, err := ix.client.Indices.Create(index,
		ix.client.Indices.Create.WithContext(ctx),
		ix.client.Indices.Create.WithBody(strings.NewReader(locationMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	ix.logger.Info("geo index created", zap.String("index", index))
	return nil
}

func (ix *Indexer) exists(ctx context.Context, index string) (bool, error) {
	res, err := ix.client.Indices.Exists([]string{index}, ix.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", index, err)
	}
	defer res.Body.Close()
	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, fmt.Errorf("check index %s: %s", index, res.Status())
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Index writes docs with one bulk request and returns how many were stored.
func (ix *Indexer) Index(ctx context.Context, index string, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, d := range docs {
		meta := map[string]any{"index": map[string]any{"_index": index, "_id": d.ID.String()}}
		src := map[string]any{"location": map[string]any{"lat": d.Coordinate.Latitude, "lon": d.Coordinate.Longitude}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(src); err != nil {
			return 0, err
		}
	}

	req := esapi.BulkRequest{Body: &buf}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return 0, fmt.Errorf("bulk index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("bulk index %s: %s", index, res.String())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	stored := 0
	for _, item := range parsed.Items {
		for _, result := range item {
			if result.Error != nil {
				ix.logger.Warn("geo document rejected",
					zap.String("index", index),
					zap.String("id", result.ID),
					zap.String("reason", result.Error.Reason),
				)
				continue
			}
			stored++
		}
	}
	return stored, nil
}

// Remove deletes single documents, for hidden candidates and deleted jobs.
func (ix *Indexer) Remove(ctx context.Context, index string, id uuid.UUID) error {
	res, err := ix.client.Delete(index, id.String(), ix.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", index, id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete %s/%s: %s", index, id, res.Status())
	}
	return nil
}
