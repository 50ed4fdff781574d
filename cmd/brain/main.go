package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"assaultbrain/internal/analysis"
	"assaultbrain/internal/config"
	"assaultbrain/internal/detector"
	"assaultbrain/internal/orchestrator"
	"assaultbrain/internal/roster"
	"assaultbrain/internal/sink"
	"assaultbrain/internal/trigger"
	"assaultbrain/internal/vision"
)

func main() {
	demo := flag.Bool("demo", false, "Run with the scripted demo match instead of a capture backend")
	flag.Parse()

	cfg := config.Load()
	log.Printf("[Main] Hardware tier %s: sampling %v, %d workers, cache %d",
		cfg.Tier, cfg.SamplingInterval, cfg.WorkerCount, cfg.CacheSize)

	// God profiles: shared Postgres when configured, local SQLite seed
	// otherwise
	repo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to open god database: %v", err)
	}
	defer repo.Close()

	// Analysis engine behind the TTL/LRU cache
	cacheConfig := analysis.CacheConfig{
		TTL:            cfg.CacheTTL,
		MaxEntries:     cfg.CacheSize,
		ComputeTimeout: 10 * cfg.SamplingInterval,
	}
	var store analysis.Store
	if cfg.PersistCache {
		path := cfg.CacheDBPath
		if path == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				configDir = "."
			}
			path = filepath.Join(configDir, "AssaultBrain", "cache.db")
		}
		sqlStore, err := analysis.NewSQLiteStore(path)
		if err != nil {
			log.Fatalf("Failed to open cache store: %v", err)
		}
		defer sqlStore.Close()
		store = sqlStore
		log.Printf("[Main] Persisting analysis cache to %s", path)
	}
	cache := analysis.NewCache(analysis.NewEngine(repo, analysis.DefaultWeights()), cacheConfig, store)

	// Sinks: log always, websocket overlay always, Discord if configured
	hub := sink.NewHub()
	defer hub.Close()
	go func() {
		log.Printf("[Main] Overlay websocket on ws://%s/ws", cfg.OverlayAddr)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		if err := http.ListenAndServe(cfg.OverlayAddr, mux); err != nil {
			log.Printf("[Main] Overlay server stopped: %v", err)
		}
	}()

	sinks := []sink.Sink{sink.LogSink{}, hub}
	var webhook *sink.WebhookSink
	if cfg.WebhookURL != "" {
		webhook = sink.NewWebhookSink(cfg.WebhookURL)
		sinks = append(sinks, webhook)
		log.Printf("[Main] Discord webhook enabled")
	}

	notify := func(event, detail string) {
		log.Printf("[Main] %s: %s", event, detail)
		hub.Notify(event, detail)
		if webhook != nil {
			if err := webhook.Notify(context.Background(), event, detail); err != nil {
				log.Printf("[Main] Webhook notify failed: %v", err)
			}
		}
	}

	screen, classifier, process, extractor, err := openVision(*demo)
	if err != nil {
		log.Fatalf("%v", err)
	}

	det := detector.New(detector.Config{
		SingleShotConfidence: cfg.SingleShotConfidence,
		ConsecutiveSamples:   cfg.DebounceSamples,
		Cooldown:             cfg.Cooldown,
	})
	coordinator := trigger.New(trigger.Config{
		Cooldown:  cfg.Cooldown,
		QueueSize: cfg.QueueSize,
	})

	orch := orchestrator.New(
		orchestrator.Config{
			SamplingInterval:   cfg.SamplingInterval,
			WorkerCount:        cfg.WorkerCount,
			GraceTimeout:       cfg.GraceTimeout,
			ScoreboardKeyDelay: cfg.ScoreboardKeyDelay,
			MaxCaptureBackoff:  10 * cfg.SamplingInterval,
		},
		screen, classifier, process, extractor,
		det, coordinator, cache, sink.NewFanout(sinks...), notify,
	)

	registerManualTriggers(orch)

	ctx := orch.HandleSignals()
	if err := orch.Run(ctx); err != nil {
		log.Fatalf("Pipeline failed to start: %v", err)
	}

	hits, misses, evictions := cache.Stats()
	log.Printf("[Main] Cache: %d hits, %d misses, %d evictions", hits, misses, evictions)
}

// openRepository picks the god profile backend.
func openRepository(cfg config.Config) (roster.Repository, error) {
	if cfg.DatabaseURL != "" {
		log.Printf("[Main] Using Postgres god database")
		return roster.NewPostgresDB(context.Background(), cfg.DatabaseURL)
	}
	log.Printf("[Main] Using local SQLite god database")
	return roster.NewGodDB()
}

// openVision wires the capture side. Real capture backends are
// platform-specific and injected here as they land; the demo rig keeps
// the pipeline exercisable everywhere.
func openVision(demo bool) (vision.ScreenSource, vision.FrameClassifier, vision.ProcessWatcher, vision.TeamExtractor, error) {
	if demo {
		rig := vision.NewDemoRig(vision.DemoMatch{
			Ours:   []string{"Zeus", "Ares", "Neith", "Ra", "Ymir"},
			Theirs: []string{"Loki", "Thor", "Artemis", "Sobek", "Kukulkan"},
		})
		return rig, rig, rig, rig, nil
	}
	return nil, nil, nil, nil, fmt.Errorf("no capture backend available on this build, run with --demo")
}
