package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	GeminiAPIKey string
	GeminiModel  string

	// MLServiceURL is the base URL of an optional self-hosted model server.
	MLServiceURL string

	// HTTPTimeout bounds each outbound HTTP call; PredictTimeout bounds a
	// whole prediction including retries across predictors.
	HTTPTimeout    time.Duration
	PredictTimeout time.Duration

	// ProbeInterval controls how often remote predictors are probed.
	ProbeInterval time.Duration

	// Probe history retention.
	StatusMaxHistory int           // max number of probe results per provider (0 = unlimited)
	StatusMaxAge     time.Duration // max age of probe results (0 = unlimited)

	// RandomSeed seeds the local engine. Zero with HasSeed false means
	// seed from the clock.
	RandomSeed uint64
	HasSeed    bool

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getenvDefault("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.MLServiceURL = os.Getenv("ML_SERVICE_URL")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.PredictTimeout, err = getenvDuration("PREDICT_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("PROBE_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	// Probe history retention.
	cfg.StatusMaxHistory = getenvInt("STATUS_MAX_HISTORY", 288) // roughly 24h at 5-minute intervals
	if cfg.StatusMaxAge, err = getenvDuration("STATUS_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if v := os.Getenv("RANDOM_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RANDOM_SEED: %w", err)
		}
		cfg.RandomSeed = seed
		cfg.HasSeed = true
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// Seed returns the configured seed, or one derived from the clock.
func (c *AppConfig) Seed() uint64 {
	if c.HasSeed {
		return c.RandomSeed
	}
	return uint64(time.Now().UnixNano())
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
