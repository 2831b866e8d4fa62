package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrWeightsSum = errors.New("matching weights must sum to 100")

// Load reads hotlist.yaml (optional), .env (optional) and the process
// environment. Environment keys use "_" for nesting: MATCHING_RADIUS_KM.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches
// the working directory and ./configs for hotlist.yaml.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hotlist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hotlist")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "hotlist")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.connect_timeout", 5*time.Second)
	v.SetDefault("database.pool_max_conns", 10)
	v.SetDefault("database.pool_min_conns", 0)
	v.SetDefault("database.pool_max_conn_lifetime", time.Hour)
	v.SetDefault("database.pool_max_conn_idle_time", 30*time.Minute)
	v.SetDefault("database.pool_health_check_period", time.Minute)
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("database.log_queries", false)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.username", "")
	v.SetDefault("elasticsearch.password", "")
	v.SetDefault("elasticsearch.candidate_index", "hotlist-candidates")
	v.SetDefault("elasticsearch.job_index", "hotlist-jobs")

	v.SetDefault("geo.backend", "postgres")

	v.SetDefault("matching.radius_km", 30.0)
	v.SetDefault("matching.page_size", 200)
	v.SetDefault("matching.near_km", 5.0)
	v.SetDefault("matching.far_km", 30.0)
	v.SetDefault("matching.good_match_threshold", 50.0)
	v.SetDefault("matching.classify_workers", 4)
	v.SetDefault("matching.weights.category", 15.0)
	v.SetDefault("matching.weights.city", 15.0)
	v.SetDefault("matching.weights.title", 20.0)
	v.SetDefault("matching.weights.keyword", 30.0)
	v.SetDefault("matching.weights.distance", 20.0)

	v.SetDefault("vocabulary.path", "")
	v.SetDefault("metrics.address", "")
}

// Validate checks struct constraints and the cross-field rules the tags
// cannot express.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}
	if math.Abs(cfg.Matching.Weights.Sum()-100) > 1e-9 {
		return fmt.Errorf("%w: got %.2f", ErrWeightsSum, cfg.Matching.Weights.Sum())
	}
	if cfg.Geo.Backend == "elasticsearch" && len(cfg.Elasticsearch.Addresses) == 0 {
		return errors.New("elasticsearch backend requires at least one address")
	}
	return nil
}
