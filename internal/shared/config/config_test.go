package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("OBJECT_STORE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local object store, got %q", cfg.ObjectStoreType)
	}
	if cfg.CacheStore != "file" {
		t.Fatalf("expected file cache store, got %q", cfg.CacheStore)
	}
	if cfg.AnalysisTimeout() != 0 {
		t.Fatalf("expected no analysis timeout by default, got %s", cfg.AnalysisTimeout())
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("OBJECT_STORE", " S3 ")
	t.Setenv("CACHE_STORE", "SQLite")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "30")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example/media/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if cfg.CacheStore != "sqlite" {
		t.Fatalf("expected sqlite, got %q", cfg.CacheStore)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.AnalysisTimeout() != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.AnalysisTimeout())
	}
	if cfg.PublicBaseURL != "https://cdn.example/media" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("ANALYSIS_TIMEOUT_SECONDS", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
