package app

import (
	"context"
	"fmt"
	"time"

	"hotlist/internal/config"
	"hotlist/internal/database"
	dbpostgres "hotlist/internal/database/postgres"
	"hotlist/internal/database/sqlstd"
	"hotlist/internal/domain/category"
	"hotlist/internal/domain/prescore"
	"hotlist/internal/domain/roles"
	"hotlist/internal/infrastructure/cache"
	"hotlist/internal/infrastructure/search"
	"hotlist/internal/logger"
	"hotlist/internal/repository"
	"hotlist/internal/usecase"
	"hotlist/internal/vocabulary"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// Container owns every long-lived dependency of one process.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	ES     *elasticsearch.Client

	Candidates *repository.PostgresCandidateRepository
	Jobs       *repository.PostgresJobRepository
	Matches    *repository.PostgresMatchRepository
	GeoIndex   repository.GeoIndex

	Calculator     *prescore.Calculator
	Lifecycle      *usecase.MatchLifecycle
	Batch          *usecase.BatchRecalculation
	Classification *usecase.ClassificationService
	MatchQuery     *usecase.MatchQuery
	IndexSync      *usecase.GeoIndexSync
}

func NewContainer(cfg config.Config) (*Container, error) {
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Environment))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := connect(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c := &Container{Config: cfg, Logger: log, DB: db}

	vocab, err := vocabulary.Load(cfg.Vocabulary.Path)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	m := cfg.Matching
	c.Calculator, err = prescore.NewCalculator(
		prescore.Weights{
			Category: m.Weights.Category,
			City:     m.Weights.City,
			Title:    m.Weights.Title,
			Keyword:  m.Weights.Keyword,
			Distance: m.Weights.Distance,
		},
		prescore.Thresholds{NearKm: m.NearKm, FarKm: m.FarKm, GoodMatch: m.GoodMatchThreshold},
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("build pre-score calculator: %w", err)
	}

	c.Cache = cache.NewRedis(ctx, cfg.Redis, log)
	c.Candidates = repository.NewPostgresCandidateRepository(db)
	c.Jobs = repository.NewPostgresJobRepository(db)
	c.Matches = repository.NewPostgresMatchRepository(db)

	es := cfg.Elasticsearch
	switch cfg.Geo.Backend {
	case "elasticsearch":
		c.ES, err = search.NewClient(es)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("build elasticsearch client: %w", err)
		}
		c.GeoIndex = search.NewGeoIndex(c.ES, es.CandidateIndex, es.JobIndex, c.Candidates, c.Jobs, log)
	default:
		c.GeoIndex = repository.NewPostgresGeoIndex(db)
	}

	c.Lifecycle = usecase.NewMatchLifecycle(
		db,
		c.Matches,
		c.Candidates,
		c.Jobs,
		usecase.NewGeoMatchFinder(c.GeoIndex, log),
		c.Calculator,
		c.Cache,
		usecase.MatchLifecycleConfig{RadiusKm: m.RadiusKm, PageSize: m.PageSize},
		log,
	)
	c.Batch = usecase.NewBatchRecalculation(c.Jobs, c.Lifecycle, m.PageSize, log)
	c.Classification = usecase.NewClassificationService(
		c.Candidates,
		c.Jobs,
		category.NewClassifier(vocab),
		roles.NewEngine(vocab.Roles),
		c.Lifecycle,
		m.ClassifyWorkers,
		log,
	)
	c.MatchQuery = usecase.NewMatchQuery(c.Matches, c.Cache, m.GoodMatchThreshold, cfg.Redis.TTL, log)

	return c, nil
}

// SearchIndexSync builds the index sync on demand. It needs an Elasticsearch
// client even when radius queries run on Postgres.
func (c *Container) SearchIndexSync() (*usecase.GeoIndexSync, error) {
	if c.IndexSync != nil {
		return c.IndexSync, nil
	}
	es := c.Config.Elasticsearch
	if c.ES == nil {
		client, err := search.NewClient(es)
		if err != nil {
			return nil, fmt.Errorf("build elasticsearch client: %w", err)
		}
		c.ES = client
	}
	c.IndexSync = usecase.NewGeoIndexSync(
		c.Candidates,
		c.Jobs,
		search.NewIndexer(c.ES, c.Logger),
		es.CandidateIndex,
		es.JobIndex,
		c.Config.Matching.PageSize,
		c.Logger,
	)
	return c.IndexSync, nil
}

func connect(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (database.DB, error) {
	if cfg.Driver == "postgres" {
		return sqlstd.Open(ctx, cfg, log)
	}
	pool, err := dbpostgres.Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
