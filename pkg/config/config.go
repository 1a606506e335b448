// Package config loads and validates indexer configuration from YAML or TOML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Corpus, Pipeline, Indexer, Store, Redis, Postgres, Kafka,
// Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus" toml:"corpus"`
	Snapshot SnapshotConfig `yaml:"snapshot" toml:"snapshot"`
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Indexer  IndexerConfig  `yaml:"indexer" toml:"indexer"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
	Postgres PostgresConfig `yaml:"postgres" toml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka" toml:"kafka"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// CorpusConfig points at the tabular record source.
type CorpusConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// SnapshotConfig locates the local index snapshot.
type SnapshotConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// PipelineConfig controls the normalization pipeline and its external
// lexical collaborators.
type PipelineConfig struct {
	Stemmer             string        `yaml:"stemmer" toml:"stemmer"`
	BaseWordsPath       string        `yaml:"baseWordsPath" toml:"base_words_path"`
	DictionaryPath      string        `yaml:"dictionaryPath" toml:"dictionary_path"`
	ThesaurusPath       string        `yaml:"thesaurusPath" toml:"thesaurus_path"`
	LookupTimeout       time.Duration `yaml:"lookupTimeout" toml:"lookup_timeout"`
	BreakerThreshold    int           `yaml:"breakerThreshold" toml:"breaker_threshold"`
	BreakerResetTimeout time.Duration `yaml:"breakerResetTimeout" toml:"breaker_reset_timeout"`
	SynonymCacheTTL     time.Duration `yaml:"synonymCacheTTL" toml:"synonym_cache_ttl"`
	SynonymCacheInRedis bool          `yaml:"synonymCacheInRedis" toml:"synonym_cache_in_redis"`
}

// IndexerConfig controls the build's worker pool and output ordering.
type IndexerConfig struct {
	Workers      int  `yaml:"workers" toml:"workers"`
	SortPostings bool `yaml:"sortPostings" toml:"sort_postings"`
	// IDFSmoothing switches idf from ln(N/df) to ln(N/(df+1)).
	IDFSmoothing bool `yaml:"idfSmoothing" toml:"idf_smoothing"`
}

// StoreConfig selects the external document store and its sync policy.
type StoreConfig struct {
	Backend           string        `yaml:"backend" toml:"backend"`
	Collection        string        `yaml:"collection" toml:"collection"`
	ContentCollection string        `yaml:"contentCollection" toml:"content_collection"`
	RetryAttempts     int           `yaml:"retryAttempts" toml:"retry_attempts"`
	RetryDelay        time.Duration `yaml:"retryDelay" toml:"retry_delay"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host" toml:"host"`
	Port            int           `yaml:"port" toml:"port"`
	Database        string        `yaml:"database" toml:"database"`
	User            string        `yaml:"user" toml:"user"`
	Password        string        `yaml:"password" toml:"password"`
	SSLMode         string        `yaml:"sslMode" toml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"maxOpenConns" toml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"maxIdleConns" toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" toml:"conn_max_lifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds the broker list and the completion-event topic.
type KafkaConfig struct {
	Enabled            bool     `yaml:"enabled" toml:"enabled"`
	Brokers            []string `yaml:"brokers" toml:"brokers"`
	IndexCompleteTopic string   `yaml:"indexCompleteTopic" toml:"index_complete_topic"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
	PoolSize int    `yaml:"poolSize" toml:"pool_size"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	Port    int  `yaml:"port" toml:"port"`
}

var (
	validBackends = map[string]struct{}{"none": {}, "memory": {}, "redis": {}, "postgres": {}}
	validStemmers = map[string]struct{}{"porter": {}, "snowball": {}}
)

// Load reads a config file (if provided) and applies environment-variable
// overrides. The file format is chosen by extension: .toml is decoded with
// go-toml, anything else as YAML.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would only fail later, mid-build.
func (c *Config) Validate() error {
	if _, ok := validBackends[c.Store.Backend]; !ok {
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	if _, ok := validStemmers[c.Pipeline.Stemmer]; !ok {
		return fmt.Errorf("invalid stemmer %q", c.Pipeline.Stemmer)
	}
	if c.Indexer.Workers < 0 {
		return fmt.Errorf("indexer workers must not be negative, got %d", c.Indexer.Workers)
	}
	if c.Store.Backend != "none" && c.Store.Collection == "" {
		return fmt.Errorf("store collection must be set for backend %q", c.Store.Backend)
	}
	if c.Store.ContentCollection != "" && c.Store.ContentCollection == c.Store.Collection {
		return fmt.Errorf("store contentCollection must differ from collection %q", c.Store.Collection)
	}
	return nil
}

// defaultConfig returns a Config suitable for local development.
func defaultConfig() *Config {
	return &Config{
		Corpus:   CorpusConfig{Path: "data/classified_jokes.csv"},
		Snapshot: SnapshotConfig{Path: "data/content_index.json"},
		Pipeline: PipelineConfig{
			Stemmer:             "porter",
			LookupTimeout:       200 * time.Millisecond,
			BreakerThreshold:    5,
			BreakerResetTimeout: 30 * time.Second,
			SynonymCacheTTL:     24 * time.Hour,
		},
		Indexer: IndexerConfig{
			Workers:      0,
			SortPostings: true,
		},
		Store: StoreConfig{
			Backend:           "none",
			Collection:        "content_index",
			ContentCollection: "humor_content",
			RetryAttempts:     3,
			RetryDelay:        100 * time.Millisecond,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "humorindex",
			User:            "humorindex",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:            []string{"localhost:9092"},
			IndexCompleteTopic: "index.complete",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads HI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HI_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("HI_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("HI_PIPELINE_STEMMER"); v != "" {
		cfg.Pipeline.Stemmer = v
	}
	if v := os.Getenv("HI_PIPELINE_DICTIONARY_PATH"); v != "" {
		cfg.Pipeline.DictionaryPath = v
	}
	if v := os.Getenv("HI_PIPELINE_THESAURUS_PATH"); v != "" {
		cfg.Pipeline.ThesaurusPath = v
	}
	if v := os.Getenv("HI_INDEXER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.Workers = n
		}
	}
	if v := os.Getenv("HI_INDEXER_IDF_SMOOTHING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Indexer.IDFSmoothing = b
		}
	}
	if v := os.Getenv("HI_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("HI_STORE_COLLECTION"); v != "" {
		cfg.Store.Collection = v
	}
	if v := os.Getenv("HI_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("HI_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("HI_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("HI_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("HI_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("HI_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HI_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("HI_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("HI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
