package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	OpsAddr         string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Public-data provider settings.
	ServiceKey         string
	WeatherBaseURL     string
	TourDataBaseURL    string
	TourPredictBaseURL string
	UpstreamTimeout    time.Duration
	UpstreamRetries    int
	ProviderLocation   *time.Location

	// Proxy cache settings.
	CacheSize   int
	APICacheTTL time.Duration
	CSVCacheTTL time.Duration

	// Region datasets on disk.
	DataDir string

	// Selection state store: "memory" or "sqlite".
	SelectionStore string
	SQLitePath     string

	// Scheduled refresh of forecast and concentration series.
	RefreshEnabled  bool
	RefreshInterval time.Duration

	// Snapshot publishing (feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := parsePositiveDuration("UPSTREAM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	apiTTL, err := parsePositiveDuration("CACHE_API_TTL", "300s")
	if err != nil {
		return nil, err
	}
	csvTTL, err := parsePositiveDuration("CACHE_CSV_TTL", "3600s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	retries, err := parseBoundedInt("UPSTREAM_RETRIES", 2, 0, 10)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseBoundedInt("CACHE_SIZE", 1000, 1, 1_000_000)
	if err != nil {
		return nil, err
	}

	tzName := EnvOrDefault("PROVIDER_TIMEZONE", "Asia/Seoul")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEZONE %q: %w", tzName, err)
	}

	serviceKey := os.Getenv("DATA_GO_KR_SERVICE_KEY")
	refreshEnabled := serviceKey != ""
	if v := os.Getenv("REFRESH_ENABLED"); v != "" {
		refreshEnabled = v == "true"
	}

	brokers := ParseList(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        EnvOrDefault("HTTP_ADDR", ":8080"),
		OpsAddr:         EnvOrDefault("OPS_ADDR", ":9090"),
		LogLevel:        EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ServiceKey:         serviceKey,
		WeatherBaseURL:     EnvOrDefault("WEATHER_API_BASE", "https://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"),
		TourDataBaseURL:    EnvOrDefault("TOUR_DATALAB_API_BASE", "https://apis.data.go.kr/B551011/DataLabService"),
		TourPredictBaseURL: EnvOrDefault("TOUR_PREDICT_API_BASE", "https://apis.data.go.kr/B551011/TatsCnctrRateService"),
		UpstreamTimeout:    upstreamTimeout,
		UpstreamRetries:    retries,
		ProviderLocation:   loc,

		CacheSize:   cacheSize,
		APICacheTTL: apiTTL,
		CSVCacheTTL: csvTTL,

		DataDir: EnvOrDefault("DATA_DIR", "data"),

		SelectionStore: EnvOrDefault("SELECTION_STORE", "memory"),
		SQLitePath:     EnvOrDefault("SQLITE_PATH", "data/selection.db"),

		RefreshEnabled:  refreshEnabled,
		RefreshInterval: refreshInterval,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   EnvOrDefault("KAFKA_TOPIC", "tourism-dashboard-series"),
	}

	if cfg.SelectionStore != "memory" && cfg.SelectionStore != "sqlite" {
		return nil, fmt.Errorf("invalid SELECTION_STORE %q: must be memory or sqlite", cfg.SelectionStore)
	}
	if cfg.SelectionStore == "sqlite" && cfg.SQLitePath == "" {
		return nil, errors.New("SQLITE_PATH is required when SELECTION_STORE is sqlite")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	if cfg.RefreshEnabled && cfg.ServiceKey == "" {
		return nil, errors.New("REFRESH_ENABLED is true but DATA_GO_KR_SERVICE_KEY is not set")
	}

	return cfg, nil
}

// EnvOrDefault returns the value of key, or def when it is unset or empty.
func EnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseList splits a comma-separated value, dropping empty entries.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBoundedInt(key string, def, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
