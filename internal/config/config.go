package config

import "time"

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Geo           GeoConfig           `mapstructure:"geo"`
	Matching      MatchingConfig      `mapstructure:"matching"`
	Vocabulary    VocabularyConfig    `mapstructure:"vocabulary"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=pgx postgres"`
	DBHost     string `mapstructure:"host" validate:"required"`
	DBPort     string `mapstructure:"port" validate:"required"`
	DBName     string `mapstructure:"name" validate:"required"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"sslmode"`

	ConnectTimeout        time.Duration `mapstructure:"connect_timeout"`
	PoolMaxConns          int32         `mapstructure:"pool_max_conns" validate:"gte=0"`
	PoolMinConns          int32         `mapstructure:"pool_min_conns" validate:"gte=0"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool_health_check_period"`

	MigrationsDir string `mapstructure:"migrations_dir"`
	// LogQueries traces every pgx statement at debug level.
	LogQueries bool `mapstructure:"log_queries"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ElasticsearchConfig struct {
	Addresses      []string `mapstructure:"addresses"`
	Username       string   `mapstructure:"username"`
	Password       string   `mapstructure:"password"`
	CandidateIndex string   `mapstructure:"candidate_index"`
	JobIndex       string   `mapstructure:"job_index"`
}

type GeoConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=postgres elasticsearch"`
}

// MatchingConfig carries every tunable of the matching pipeline.
type MatchingConfig struct {
	RadiusKm           float64       `mapstructure:"radius_km" validate:"gt=0"`
	PageSize           int           `mapstructure:"page_size" validate:"gt=0,lte=1000"`
	NearKm             float64       `mapstructure:"near_km" validate:"gte=0"`
	FarKm              float64       `mapstructure:"far_km" validate:"gtfield=NearKm"`
	GoodMatchThreshold float64       `mapstructure:"good_match_threshold" validate:"gte=0,lte=100"`
	Weights            WeightsConfig `mapstructure:"weights"`
	ClassifyWorkers    int           `mapstructure:"classify_workers" validate:"gt=0"`
}

type WeightsConfig struct {
	Category float64 `mapstructure:"category" validate:"gte=0"`
	City     float64 `mapstructure:"city" validate:"gte=0"`
	Title    float64 `mapstructure:"title" validate:"gte=0"`
	Keyword  float64 `mapstructure:"keyword" validate:"gte=0"`
	Distance float64 `mapstructure:"distance" validate:"gte=0"`
}

func (w WeightsConfig) Sum() float64 {
	return w.Category + w.City + w.Title + w.Keyword + w.Distance
}

type VocabularyConfig struct {
	Path string `mapstructure:"path"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
