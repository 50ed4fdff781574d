// Package config resolves the daemon's settings from the detected
// hardware tier, .env files, and environment variables.
package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Tier buckets the host machine's capability. It drives the sampling
// rate, worker count and cache size so the companion never starves the
// game itself.
type Tier string

const (
	TierMinimal  Tier = "minimal"
	TierStandard Tier = "standard"
	TierMaximum  Tier = "maximum"
)

// DetectTier classifies the host by logical CPU count.
func DetectTier() Tier {
	cpus := runtime.NumCPU()
	switch {
	case cpus >= 8:
		return TierMaximum
	case cpus >= 4:
		return TierStandard
	default:
		return TierMinimal
	}
}

// Config is the full runtime configuration.
type Config struct {
	Tier Tier

	SamplingInterval     time.Duration
	WorkerCount          int
	QueueSize            int
	GraceTimeout         time.Duration
	ScoreboardKeyDelay   time.Duration
	Cooldown             time.Duration
	DebounceSamples      int
	SingleShotConfidence float64

	CacheSize    int
	CacheTTL     time.Duration
	PersistCache bool
	CacheDBPath  string

	DatabaseURL string // optional Postgres god DB
	WebhookURL  string // optional Discord webhook
	OverlayAddr string // websocket overlay listen address
}

// tierDefaults returns the per-tier sampling interval, worker count and
// cache size.
func tierDefaults(tier Tier) (time.Duration, int, int) {
	switch tier {
	case TierMaximum:
		return 500 * time.Millisecond, 8, 200
	case TierStandard:
		return time.Second, 4, 100
	default:
		return 2 * time.Second, 2, 50
	}
}

// Default returns the configuration for the given tier with no
// environment applied.
func Default(tier Tier) Config {
	interval, workers, cacheSize := tierDefaults(tier)
	return Config{
		Tier:                 tier,
		SamplingInterval:     interval,
		WorkerCount:          workers,
		QueueSize:            4,
		GraceTimeout:         5 * time.Second,
		ScoreboardKeyDelay:   200 * time.Millisecond,
		Cooldown:             30 * time.Second,
		DebounceSamples:      3,
		SingleShotConfidence: 0.6,
		CacheSize:            cacheSize,
		CacheTTL:             time.Hour,
		OverlayAddr:          "127.0.0.1:8077",
	}
}

// Load reads .env files and environment overrides on top of the
// detected tier's defaults.
func Load() Config {
	// Try .env from common locations, first hit wins
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("[Config] Loaded environment from %s", path)
			break
		}
	}

	tier := DetectTier()
	if v := os.Getenv("ASSAULT_TIER"); v != "" {
		switch Tier(v) {
		case TierMinimal, TierStandard, TierMaximum:
			tier = Tier(v)
		default:
			log.Printf("[Config] Unknown ASSAULT_TIER %q, using detected tier %s", v, tier)
		}
	}

	cfg := Default(tier)

	cfg.SamplingInterval = envDuration("ASSAULT_SAMPLING_INTERVAL", cfg.SamplingInterval)
	cfg.WorkerCount = envInt("ASSAULT_WORKERS", cfg.WorkerCount)
	cfg.QueueSize = envInt("ASSAULT_QUEUE_SIZE", cfg.QueueSize)
	cfg.GraceTimeout = envDuration("ASSAULT_GRACE_TIMEOUT", cfg.GraceTimeout)
	cfg.Cooldown = envDuration("ASSAULT_COOLDOWN", cfg.Cooldown)
	cfg.DebounceSamples = envInt("ASSAULT_DEBOUNCE_SAMPLES", cfg.DebounceSamples)
	cfg.SingleShotConfidence = envFloat("ASSAULT_SINGLE_SHOT_CONFIDENCE", cfg.SingleShotConfidence)
	cfg.CacheSize = envInt("ASSAULT_CACHE_SIZE", cfg.CacheSize)
	cfg.CacheTTL = envDuration("ASSAULT_CACHE_TTL", cfg.CacheTTL)
	cfg.PersistCache = envBool("ASSAULT_PERSIST_CACHE", cfg.PersistCache)
	cfg.CacheDBPath = os.Getenv("ASSAULT_CACHE_DB")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.WebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	if v := os.Getenv("ASSAULT_OVERLAY_ADDR"); v != "" {
		cfg.OverlayAddr = v
	}

	// The sampling loop never runs hotter than 10Hz or colder than
	// one sample per 2s
	if cfg.SamplingInterval < 100*time.Millisecond {
		cfg.SamplingInterval = 100 * time.Millisecond
	}
	if cfg.SamplingInterval > 2*time.Second {
		cfg.SamplingInterval = 2 * time.Second
	}

	return cfg
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[Config] Invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[Config] Invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Plain numbers are read as seconds
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
		log.Printf("[Config] Invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("[Config] Invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}
