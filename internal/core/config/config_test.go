package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()
	if cfg.Addr != ":8090" || cfg.DocStoreCollection != "vakufs" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.CacheValidity != 720*time.Hour {
		t.Fatalf("validity=%v want 720h", cfg.CacheValidity)
	}
	if cfg.FitDebounce != 500*time.Millisecond {
		t.Fatalf("fit debounce=%v", cfg.FitDebounce)
	}
	if cfg.MapInitialZoom != 9 || cfg.MapMobileZoom != 8.1 {
		t.Fatalf("zoom=%v mobile=%v", cfg.MapInitialZoom, cfg.MapMobileZoom)
	}
	if cfg.Invalidation.Enabled {
		t.Fatal("invalidation should default to disabled")
	}
	if len(cfg.Invalidation.Brokers) != 1 || cfg.Invalidation.Brokers[0] != "localhost:9092" {
		t.Fatalf("brokers=%v", cfg.Invalidation.Brokers)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("LOG_CONSOLE", "yes")
	t.Setenv("CACHE_ENABLED", "0")
	t.Setenv("FIT_DEBOUNCE", "250ms")
	t.Setenv("MAP_CENTER_LAT", "43.5")
	t.Setenv("SUGGEST_MAX", "8")
	t.Setenv("KAFKA_BROKERS", " a:1, ,b:2 ")
	t.Setenv("INVALIDATION_ENABLED", "true")

	cfg := FromEnv()
	if cfg.Addr != ":9999" || !cfg.LogConsole || cfg.CacheEnabled {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.FitDebounce != 250*time.Millisecond || cfg.MapCenterLat != 43.5 || cfg.SuggestMax != 8 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if got := cfg.Invalidation.Brokers; len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
		t.Fatalf("brokers=%v", got)
	}
	if !cfg.Invalidation.Enabled {
		t.Fatal("invalidation should be enabled")
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("FIT_DEBOUNCE", "soon")
	t.Setenv("MAP_INITIAL_ZOOM", "far")
	t.Setenv("LOG_SAMPLE_N", "-3")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg := FromEnv()
	if cfg.FitDebounce != 500*time.Millisecond || cfg.MapInitialZoom != 9 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.LogSampleN != 0 || !cfg.Metrics.Enabled {
		t.Fatalf("cfg=%+v", cfg)
	}
}
