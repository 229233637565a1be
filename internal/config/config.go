package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Station dataset.
	StationsPath   string
	StationsFormat string // auto, csv, jsonl, json
	GridCellDeg    float64

	// ZIP lookup.
	ZIPDBPath    string
	ZIPCacheSize int

	// Distance sanity: matches beyond this radius are flagged, never failed.
	// Zero disables the check.
	FarMatchKm float64
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cellDeg, err := parseFloat("GRID_CELL_DEG", "2.5")
	if err != nil {
		return nil, err
	}
	if cellDeg <= 0 || cellDeg > 90 {
		return nil, errors.New("GRID_CELL_DEG must be in (0, 90]")
	}

	farKm, err := parseFloat("FAR_MATCH_KM", "500")
	if err != nil {
		return nil, err
	}
	if farKm < 0 {
		return nil, errors.New("FAR_MATCH_KM must be >= 0")
	}

	cacheSize, err := parseInt("ZIP_CACHE_SIZE", "1000")
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		return nil, errors.New("ZIP_CACHE_SIZE must be > 0")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		StationsPath:    os.Getenv("STATIONS_PATH"),
		StationsFormat:  envOrDefault("STATIONS_FORMAT", "auto"),
		GridCellDeg:     cellDeg,
		ZIPDBPath:       os.Getenv("ZIPDB_PATH"),
		ZIPCacheSize:    cacheSize,
		FarMatchKm:      farKm,
	}

	if cfg.StationsPath == "" {
		return nil, errors.New("STATIONS_PATH is required")
	}
	switch cfg.StationsFormat {
	case "auto", "csv", "jsonl", "json":
	default:
		return nil, fmt.Errorf("invalid STATIONS_FORMAT %q (want auto, csv, jsonl, or json)", cfg.StationsFormat)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, fallback string) (float64, error) {
	f, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func parseInt(key, fallback string) (int, error) {
	n, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
