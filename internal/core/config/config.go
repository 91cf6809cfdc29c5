package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Topic   string
	Brokers []string
	GroupID string
	// coalesces bursts of record-change events into one reload
	ReloadDelay time.Duration
}

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

type Config struct {
	Addr       string
	LogLevel   string
	LogConsole bool
	LogSampleN uint32

	DocStoreURL        string
	DocStoreCollection string

	RedisAddr      string
	CacheEnabled   bool
	CacheValidity  time.Duration
	CacheOpTimeout time.Duration

	FitDebounce    time.Duration
	MapCenterLat   float64
	MapCenterLng   float64
	MapInitialZoom float64
	MapMobileZoom  float64
	SuggestMax     int
	SessionIdleTTL time.Duration

	Metrics      MetricsCfg
	Invalidation InvalidationCfg
}

func FromEnv() Config {
	brokers := splitCSV(getenv("KAFKA_BROKERS", "localhost:9092"))

	sampleN := getint("LOG_SAMPLE_N", 0)
	if sampleN < 0 {
		sampleN = 0
	}
	suggestMax := getint("SUGGEST_MAX", 0)
	if suggestMax < 0 {
		suggestMax = 0
	}

	return Config{
		Addr:       getenv("ADDR", ":8090"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),
		LogSampleN: uint32(sampleN),

		DocStoreURL:        getenv("DOCSTORE_URL", "http://localhost:8080"),
		DocStoreCollection: getenv("DOCSTORE_COLLECTION", "vakufs"),

		RedisAddr:      getenv("REDIS_ADDR", "localhost:6379"),
		CacheEnabled:   getbool("CACHE_ENABLED", true),
		CacheValidity:  getduration("CACHE_VALIDITY", 30*24*time.Hour),
		CacheOpTimeout: getduration("CACHE_OP_TIMEOUT", 2*time.Second),

		FitDebounce:    getduration("FIT_DEBOUNCE", 500*time.Millisecond),
		MapCenterLat:   getfloat("MAP_CENTER_LAT", 42.99603931107363),
		MapCenterLng:   getfloat("MAP_CENTER_LNG", 19.863259815559704),
		MapInitialZoom: getfloat("MAP_INITIAL_ZOOM", 9),
		MapMobileZoom:  getfloat("MAP_MOBILE_ZOOM", 8.1),
		SuggestMax:     suggestMax,
		SessionIdleTTL: getduration("SESSION_IDLE_TTL", 30*time.Minute),

		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", true),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
		Invalidation: InvalidationCfg{
			Enabled:     getbool("INVALIDATION_ENABLED", false),
			Topic:       getenv("KAFKA_TOPIC", "vakuf-record-changes"),
			Brokers:     brokers,
			GroupID:     getenv("KAFKA_GROUP_ID", "vakuf-map"),
			ReloadDelay: getduration("INVALIDATION_RELOAD_DELAY", time.Second),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
