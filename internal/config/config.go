package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the recommendation engine.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
	Keywords KeywordsConfig `yaml:"keywords"`
	Learning LearningConfig `yaml:"learning"`
	Feedback FeedbackConfig `yaml:"feedback"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// KeywordsConfig controls keyword-pack loading for the scorer.
type KeywordsConfig struct {
	Path string `yaml:"path"`
}

// LearningConfig tunes the per-user preference learner. Zero values fall
// back to the learner's defaults.
type LearningConfig struct {
	LearningRate        float64 `yaml:"learningRate"`
	TimeDecayFactor     float64 `yaml:"timeDecayFactor"`
	ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
	EvidenceLimit       int     `yaml:"evidenceLimit"`
}

// FeedbackConfig tunes the community feedback index.
type FeedbackConfig struct {
	MaxQueries          int     `yaml:"maxQueries"`
	SimilarityThreshold float64 `yaml:"similarityThreshold"`
	LayerCountWindow    int     `yaml:"layerCountWindow"`
}

// CacheConfig controls Valkey-backed caching of recommendation responses.
type CacheConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Addr              string        `yaml:"addr"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	DialTimeout       time.Duration `yaml:"dialTimeout"`
	ReadTimeout       time.Duration `yaml:"readTimeout"`
	WriteTimeout      time.Duration `yaml:"writeTimeout"`
	MaxRetries        int           `yaml:"maxRetries"`
	TLS               bool          `yaml:"tls"`
	RecommendationTTL time.Duration `yaml:"recommendationTTL"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("VIZREC_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Logging:  LoggingConfig{Level: "info", JSON: false},
		Keywords: KeywordsConfig{Path: "configs/keywords/default.yaml"},
		Feedback: FeedbackConfig{
			MaxQueries:          1024,
			SimilarityThreshold: 0.7,
			LayerCountWindow:    2,
		},
		Cache: CacheConfig{
			Enabled:           false,
			DialTimeout:       2 * time.Second,
			ReadTimeout:       500 * time.Millisecond,
			WriteTimeout:      500 * time.Millisecond,
			MaxRetries:        2,
			RecommendationTTL: 2 * time.Minute,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VIZREC_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("VIZREC_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("VIZREC_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VIZREC_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("VIZREC_KEYWORDS_PATH"); v != "" {
		cfg.Keywords.Path = v
	}
	if v := os.Getenv("VIZREC_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Learning.LearningRate = f
		}
	}
	if v := os.Getenv("VIZREC_TIME_DECAY_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Learning.TimeDecayFactor = f
		}
	}
	if v := os.Getenv("VIZREC_CONFIDENCE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Learning.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv("VIZREC_EVIDENCE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Learning.EvidenceLimit = n
		}
	}
	if v := os.Getenv("VIZREC_FEEDBACK_MAX_QUERIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feedback.MaxQueries = n
		}
	}
	if v := os.Getenv("VIZREC_FEEDBACK_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Feedback.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("VIZREC_FEEDBACK_LAYER_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Feedback.LayerCountWindow = n
		}
	}
	if v := os.Getenv("VIZREC_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || strings.EqualFold(v, "1")
	}
	if v := os.Getenv("VIZREC_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("VIZREC_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("VIZREC_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("VIZREC_CACHE_TLS"); strings.EqualFold(v, "true") || strings.EqualFold(v, "1") {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("VIZREC_CACHE_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.DialTimeout = d
		}
	}
	if v := os.Getenv("VIZREC_CACHE_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.ReadTimeout = d
		}
	}
	if v := os.Getenv("VIZREC_CACHE_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.WriteTimeout = d
		}
	}
	if v := os.Getenv("VIZREC_CACHE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxRetries = n
		}
	}
	if v := os.Getenv("VIZREC_CACHE_RECOMMENDATION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.RecommendationTTL = d
		}
	}
}
