// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Corpus, Analysis, Index, Search, Cache, Redis, Postgres, Kafka, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Positional tokenization modes.
const (
	PositionalRaw     = "raw"
	PositionalStemmed = "stemmed"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	// RequestTimeout bounds a single API request; zero disables it.
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	// RateLimitPerMinute caps requests per client IP; zero disables it.
	RateLimitPerMinute int      `yaml:"rateLimitPerMinute"`
	CORSOrigins        []string `yaml:"corsOrigins"`
}

// CorpusConfig describes where raw documents live and how they are read.
type CorpusConfig struct {
	Dir             string   `yaml:"dir"`
	Extensions      []string `yaml:"extensions"`
	ReadConcurrency int      `yaml:"readConcurrency"`
}

// AnalysisConfig controls the preprocessing pipeline shared by the indexer
// and the query tokenizer.
type AnalysisConfig struct {
	StopwordsFile  string `yaml:"stopwordsFile"`
	MinTokenLength int    `yaml:"minTokenLength"`
	PositionalMode string `yaml:"positionalMode"`
}

// IndexConfig controls where snapshots are written and how long a writer
// waits for the rebuild lock.
type IndexConfig struct {
	DataDir     string        `yaml:"dataDir"`
	LockTimeout time.Duration `yaml:"lockTimeout"`
}

// SearchConfig controls query limits.
type SearchConfig struct {
	MaxQueryLength int `yaml:"maxQueryLength"`
}

// CacheConfig selects and sizes the query result cache.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	AnalyticsEvents string `yaml:"analyticsEvents"`
}

// AnalyticsConfig controls the optional query analytics pipeline.
type AnalyticsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Port serves the analytics API of cmd/analytics.
	Port             int           `yaml:"port"`
	BufferSize       int           `yaml:"bufferSize"`
	SnapshotInterval time.Duration `yaml:"snapshotInterval"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Analysis.PositionalMode {
	case PositionalRaw, PositionalStemmed:
	default:
		return fmt.Errorf("invalid analysis.positionalMode %q: want %q or %q",
			c.Analysis.PositionalMode, PositionalRaw, PositionalStemmed)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("invalid cache.backend %q", c.Cache.Backend)
	}
	if c.Analysis.MinTokenLength < 1 {
		return fmt.Errorf("analysis.minTokenLength must be >= 1, got %d", c.Analysis.MinTokenLength)
	}
	if c.Corpus.ReadConcurrency < 1 {
		return fmt.Errorf("corpus.readConcurrency must be >= 1, got %d", c.Corpus.ReadConcurrency)
	}
	if c.Index.DataDir == "" {
		return fmt.Errorf("index.dataDir must not be empty")
	}
	return nil
}

// Default returns a Config with defaults suitable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  10 * time.Second,
		},
		Corpus: CorpusConfig{
			Dir:             "Abstracts",
			Extensions:      []string{".txt"},
			ReadConcurrency: 8,
		},
		Analysis: AnalysisConfig{
			MinTokenLength: 1,
			PositionalMode: PositionalRaw,
		},
		Index: IndexConfig{
			DataDir:     "data/index",
			LockTimeout: 10 * time.Second,
		},
		Search: SearchConfig{
			MaxQueryLength: 1024,
		},
		Cache: CacheConfig{
			Backend: CacheMemory,
			Size:    1024,
			TTL:     5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "retrieval",
			User:            "retrieval",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "retrieval-analytics",
			Topics: KafkaTopics{
				AnalyticsEvents: "retrieval-analytics-events",
			},
		},
		Analytics: AnalyticsConfig{
			Enabled:          false,
			Port:             8081,
			BufferSize:       10000,
			SnapshotInterval: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads IRS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IRS_CORPUS_DIR"); v != "" {
		cfg.Corpus.Dir = v
	}
	if v := os.Getenv("IRS_CORPUS_EXTENSIONS"); v != "" {
		cfg.Corpus.Extensions = strings.Split(v, ",")
	}
	if v := os.Getenv("IRS_ANALYSIS_STOPWORDS_FILE"); v != "" {
		cfg.Analysis.StopwordsFile = v
	}
	if v := os.Getenv("IRS_ANALYSIS_POSITIONAL_MODE"); v != "" {
		cfg.Analysis.PositionalMode = v
	}
	if v := os.Getenv("IRS_INDEX_DATA_DIR"); v != "" {
		cfg.Index.DataDir = v
	}
	if v := os.Getenv("IRS_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("IRS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("IRS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("IRS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("IRS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("IRS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("IRS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("IRS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("IRS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("IRS_ANALYTICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = enabled
		}
	}
	if v := os.Getenv("IRS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("IRS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
