package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "none" {
		t.Fatalf("expected default backend none, got %q", cfg.Store.Backend)
	}
	if cfg.Pipeline.Stemmer != "porter" {
		t.Fatalf("expected default stemmer porter, got %q", cfg.Pipeline.Stemmer)
	}
	if !cfg.Indexer.SortPostings {
		t.Fatal("expected postings to be sorted by default")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.yaml")
	content := `
corpus:
  path: jokes.csv
pipeline:
  stemmer: snowball
  lookupTimeout: 50ms
store:
  backend: redis
  collection: terms
indexer:
  workers: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Path != "jokes.csv" {
		t.Errorf("corpus path = %q", cfg.Corpus.Path)
	}
	if cfg.Pipeline.Stemmer != "snowball" {
		t.Errorf("stemmer = %q", cfg.Pipeline.Stemmer)
	}
	if cfg.Pipeline.LookupTimeout != 50*time.Millisecond {
		t.Errorf("lookup timeout = %v", cfg.Pipeline.LookupTimeout)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Collection != "terms" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Indexer.Workers != 3 {
		t.Errorf("workers = %d", cfg.Indexer.Workers)
	}
	// untouched sections keep their defaults
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indexer.toml")
	content := `
[snapshot]
path = "out/index.json"

[store]
backend = "postgres"
collection = "content_index"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snapshot.Path != "out/index.json" {
		t.Errorf("snapshot path = %q", cfg.Snapshot.Path)
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HI_STORE_BACKEND", "memory")
	t.Setenv("HI_INDEXER_WORKERS", "7")
	t.Setenv("HI_KAFKA_BROKERS", "a:9092,b:9092")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Indexer.Workers != 7 {
		t.Errorf("workers = %d", cfg.Indexer.Workers)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "firestore" }},
		{"unknown stemmer", func(c *Config) { c.Pipeline.Stemmer = "lancaster" }},
		{"negative workers", func(c *Config) { c.Indexer.Workers = -1 }},
		{"missing collection", func(c *Config) { c.Store.Backend = "redis"; c.Store.Collection = "" }},
		{"shared collection", func(c *Config) { c.Store.Backend = "redis"; c.Store.ContentCollection = c.Store.Collection }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateWithoutContentCollection(t *testing.T) {
	cfg := defaultConfig()
	cfg.Store.Backend = "postgres"
	cfg.Store.ContentCollection = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
