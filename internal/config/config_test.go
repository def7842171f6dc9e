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
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected default address %s", cfg.Server.Address)
	}
	if cfg.Feedback.SimilarityThreshold != 0.7 {
		t.Fatalf("unexpected similarity threshold %f", cfg.Feedback.SimilarityThreshold)
	}
	if cfg.Cache.Enabled {
		t.Fatalf("cache should be disabled by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := []byte(`server:
  address: ":9090"
  gracefulTimeout: 5s
learning:
  learningRate: 0.2
feedback:
  layerCountWindow: 3
`)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("unexpected address %s", cfg.Server.Address)
	}
	if cfg.Server.GracefulTimeout != 5*time.Second {
		t.Fatalf("unexpected graceful timeout %v", cfg.Server.GracefulTimeout)
	}
	if cfg.Learning.LearningRate != 0.2 {
		t.Fatalf("unexpected learning rate %f", cfg.Learning.LearningRate)
	}
	if cfg.Feedback.LayerCountWindow != 3 {
		t.Fatalf("unexpected layer window %d", cfg.Feedback.LayerCountWindow)
	}
	// Unset sections keep their defaults.
	if cfg.Server.MetricsAddress != ":2112" {
		t.Fatalf("unexpected metrics address %s", cfg.Server.MetricsAddress)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected an error for a missing explicit config path")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VIZREC_SERVER_ADDRESS", ":7070")
	t.Setenv("VIZREC_LOG_FORMAT", "json")
	t.Setenv("VIZREC_CACHE_ENABLED", "true")
	t.Setenv("VIZREC_CACHE_ADDR", "valkey:6379")
	t.Setenv("VIZREC_CACHE_RECOMMENDATION_TTL", "90s")
	t.Setenv("VIZREC_CONFIDENCE_THRESHOLD", "0.6")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Fatalf("env address override lost: %s", cfg.Server.Address)
	}
	if !cfg.Logging.JSON {
		t.Fatalf("expected JSON logging")
	}
	if !cfg.Cache.Enabled || cfg.Cache.Addr != "valkey:6379" {
		t.Fatalf("cache overrides lost: %+v", cfg.Cache)
	}
	if cfg.Cache.RecommendationTTL != 90*time.Second {
		t.Fatalf("unexpected TTL %v", cfg.Cache.RecommendationTTL)
	}
	if cfg.Learning.ConfidenceThreshold != 0.6 {
		t.Fatalf("unexpected confidence threshold %f", cfg.Learning.ConfidenceThreshold)
	}
}
