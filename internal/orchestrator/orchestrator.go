// Package orchestrator owns the sampling loop and the worker pool and
// wires the detector, trigger coordinator, analysis cache and sinks
// into one pipeline.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"assaultbrain/internal/analysis"
	"assaultbrain/internal/detector"
	"assaultbrain/internal/sink"
	"assaultbrain/internal/trigger"
	"assaultbrain/internal/vision"
)

// Analyzer is the cache-fronted analysis entry point. Satisfied by
// *analysis.Cache.
type Analyzer interface {
	Analyze(ctx context.Context, ours, theirs []string) (*analysis.AnalysisResult, error)
}

// Config controls loop timing and pool size.
type Config struct {
	SamplingInterval   time.Duration
	WorkerCount        int
	GraceTimeout       time.Duration
	ScoreboardKeyDelay time.Duration
	// Cap on the capture retry backoff after repeated failures.
	MaxCaptureBackoff time.Duration
}

// DefaultConfig returns conservative loop settings.
func DefaultConfig() Config {
	return Config{
		SamplingInterval:   time.Second,
		WorkerCount:        2,
		GraceTimeout:       5 * time.Second,
		ScoreboardKeyDelay: 200 * time.Millisecond,
		MaxCaptureBackoff:  10 * time.Second,
	}
}

// Orchestrator runs the pipeline. Construct with New, drive with Run,
// stop with Shutdown.
type Orchestrator struct {
	config Config

	screen      vision.ScreenSource
	classifier  vision.FrameClassifier
	process     vision.ProcessWatcher
	extractor   vision.TeamExtractor
	detector    *detector.Detector
	coordinator *trigger.Coordinator
	analyzer    Analyzer
	sink        sink.Sink
	notify      sink.NotifyFunc

	frameMu     sync.Mutex
	latestFrame *vision.Frame

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	workerWg     sync.WaitGroup

	stats     *Stats
	startedAt time.Time
}

// New wires the pipeline. notify may be nil.
func New(
	config Config,
	screen vision.ScreenSource,
	classifier vision.FrameClassifier,
	process vision.ProcessWatcher,
	extractor vision.TeamExtractor,
	det *detector.Detector,
	coordinator *trigger.Coordinator,
	analyzer Analyzer,
	resultSink sink.Sink,
	notify sink.NotifyFunc,
) *Orchestrator {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	if notify == nil {
		notify = func(event, detail string) {
			log.Printf("[Orchestrator] %s: %s", event, detail)
		}
	}
	return &Orchestrator{
		config:      config,
		screen:      screen,
		classifier:  classifier,
		process:     process,
		extractor:   extractor,
		detector:    det,
		coordinator: coordinator,
		analyzer:    analyzer,
		sink:        resultSink,
		notify:      notify,
		shutdownCh:  make(chan struct{}),
		stats:       newStats(),
	}
}

// Run starts the worker pool and drives the sampling loop until the
// context is cancelled or Shutdown is called. Only wiring errors are
// returned; per-frame and per-job failures degrade locally.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.validate(); err != nil {
		return err
	}

	o.startedAt = time.Now()
	log.Printf("[Orchestrator] Starting with %d workers, sampling every %v",
		o.config.WorkerCount, o.config.SamplingInterval)

	for i := 0; i < o.config.WorkerCount; i++ {
		o.workerWg.Add(1)
		go o.worker(ctx, i)
	}

	ticker := time.NewTicker(o.config.SamplingInterval)
	defer ticker.Stop()

	captureFailures := 0
	var nextCaptureAt time.Time

	for {
		select {
		case <-ctx.Done():
			o.Shutdown(context.Background())
			return nil
		case <-o.shutdownCh:
			return nil
		case now := <-ticker.C:
			if now.Before(nextCaptureAt) {
				continue
			}
			if o.sampleOnce(ctx, now) {
				captureFailures = 0
				nextCaptureAt = time.Time{}
			} else {
				captureFailures++
				backoff := o.config.SamplingInterval * time.Duration(1<<min(captureFailures, 4))
				if o.config.MaxCaptureBackoff > 0 && backoff > o.config.MaxCaptureBackoff {
					backoff = o.config.MaxCaptureBackoff
				}
				nextCaptureAt = now.Add(backoff)
			}
		}
	}
}

func (o *Orchestrator) validate() error {
	switch {
	case o.screen == nil:
		return errors.New("orchestrator: no screen source")
	case o.classifier == nil:
		return errors.New("orchestrator: no frame classifier")
	case o.process == nil:
		return errors.New("orchestrator: no process watcher")
	case o.extractor == nil:
		return errors.New("orchestrator: no team extractor")
	case o.detector == nil || o.coordinator == nil:
		return errors.New("orchestrator: detector and coordinator are required")
	case o.analyzer == nil:
		return errors.New("orchestrator: no analyzer")
	case o.sink == nil:
		return errors.New("orchestrator: no result sink")
	}
	return nil
}

// sampleOnce captures and classifies one frame. Returns false when the
// capture failed and the loop should back off.
func (o *Orchestrator) sampleOnce(ctx context.Context, now time.Time) bool {
	running := o.process.Running(ctx)
	if !running {
		o.detector.Observe(detector.Sample{ProcessRunning: false, At: now})
		return true
	}

	frame, err := o.screen.Capture(ctx)
	if err != nil {
		o.stats.CaptureFailures.Add(1)
		if errors.Is(err, vision.ErrCaptureUnavailable) {
			log.Printf("[Orchestrator] Capture unavailable, backing off")
		} else {
			log.Printf("[Orchestrator] Capture failed: %v", err)
		}
		return false
	}

	o.frameMu.Lock()
	o.latestFrame = frame
	o.frameMu.Unlock()

	cls, err := o.classifier.Classify(ctx, frame)
	if err != nil {
		log.Printf("[Orchestrator] Classification failed: %v", err)
		return true
	}

	o.stats.FramesSampled.Add(1)

	confirmed := o.detector.Observe(detector.Sample{
		ProcessRunning: true,
		Classification: cls,
		At:             now,
	})
	if confirmed {
		o.coordinator.Submit(trigger.Event{Source: trigger.SourcePeriodic, At: now})
	}
	return true
}

// worker consumes accepted triggers until the queue closes.
func (o *Orchestrator) worker(ctx context.Context, id int) {
	defer o.workerWg.Done()
	log.Printf("[Worker %d] Started", id)

	for ev := range o.coordinator.Jobs() {
		// Only jobs already in flight get the grace window; anything
		// still queued when shutdown starts is discarded.
		select {
		case <-o.shutdownCh:
			log.Printf("[Worker %d] Discarding queued %s trigger, shutting down", id, ev.Source)
			continue
		default:
		}
		o.runJob(ctx, id, ev)
	}

	log.Printf("[Worker %d] Queue closed, exiting", id)
}

// runJob extracts the rosters from the latest frame and publishes the
// analysis. Every failure path degrades locally; the loop never stops.
func (o *Orchestrator) runJob(ctx context.Context, id int, ev trigger.Event) {
	frame := o.currentFrame()
	if frame == nil {
		o.notify("CaptureUnavailable", "no frame captured yet")
		return
	}

	ext := o.extractor.Extract(ctx, frame)
	switch ext.Status {
	case vision.ExtractionNotDetected:
		log.Printf("[Worker %d] No rosters on screen for %s trigger", id, ev.Source)
		return
	case vision.ExtractionError:
		log.Printf("[Worker %d] Extraction failed: %s", id, ext.Reason)
		o.notify("ExtractionError", ext.Reason)
		return
	}

	if len(ext.Ours.Names) != 5 || len(ext.Theirs.Names) != 5 {
		o.stats.IncompleteRosters.Add(1)
		detail := fmt.Sprintf("read %d ally and %d enemy names, need 5 each",
			len(ext.Ours.Names), len(ext.Theirs.Names))
		log.Printf("[Worker %d] Incomplete roster: %s", id, detail)
		o.notify("IncompleteRoster", detail)
		return
	}

	res, err := o.analyzer.Analyze(ctx, ext.Ours.Names, ext.Theirs.Names)
	if err != nil {
		log.Printf("[Worker %d] Analysis failed: %v", id, err)
		return
	}

	o.stats.AnalysesCompleted.Add(1)
	if res.Fallback {
		o.stats.FallbacksPublished.Add(1)
	}
	o.stats.recordMatchup(res.Fingerprint)

	if err := o.sink.Publish(ctx, res); err != nil {
		log.Printf("[Worker %d] Publish failed: %v", id, err)
	}
}

func (o *Orchestrator) currentFrame() *vision.Frame {
	o.frameMu.Lock()
	defer o.frameMu.Unlock()
	return o.latestFrame
}

// TriggerHotkey submits a manual analysis trigger. Cooldown still
// applies; mashing the key does not queue extra work.
func (o *Orchestrator) TriggerHotkey() trigger.Decision {
	return o.coordinator.Submit(trigger.Event{Source: trigger.SourceHotkey})
}

// TriggerScoreboard submits a trigger after the scoreboard key settle
// delay, giving the overlay time to render before the frame is read.
func (o *Orchestrator) TriggerScoreboard() trigger.Decision {
	time.Sleep(o.config.ScoreboardKeyDelay)
	return o.coordinator.Submit(trigger.Event{Source: trigger.SourceScoreboard})
}

// Shutdown stops the sampling loop, closes the queue to new jobs, and
// waits for in-flight jobs up to the grace timeout. Safe to call more
// than once and from multiple goroutines.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.shutdownOnce.Do(func() {
		log.Printf("[Orchestrator] Shutting down")
		close(o.shutdownCh)
		o.coordinator.Close()

		done := make(chan struct{})
		go func() {
			o.workerWg.Wait()
			close(done)
		}()

		grace := o.config.GraceTimeout
		if grace <= 0 {
			grace = DefaultConfig().GraceTimeout
		}

		select {
		case <-done:
			log.Printf("[Orchestrator] All workers drained")
		case <-time.After(grace):
			log.Printf("[Orchestrator] Grace timeout after %v, abandoning in-flight jobs", grace)
		case <-ctx.Done():
			log.Printf("[Orchestrator] Shutdown context cancelled, abandoning in-flight jobs")
		}

		o.logSummary()
	})
}

func (o *Orchestrator) logSummary() {
	accepted, suppressed := o.coordinator.Stats()
	snap := o.stats.Snapshot()
	log.Printf("[Orchestrator] Session summary: runtime %s, %d frames sampled, %d triggers accepted, %d suppressed, %d analyses (%d fallbacks), %d distinct matchups, %d incomplete rosters",
		formatDuration(time.Since(o.startedAt)),
		snap.FramesSampled, accepted, suppressed,
		snap.AnalysesCompleted, snap.FallbacksPublished,
		snap.DistinctMatchups, snap.IncompleteRosters)
}

// formatDuration renders a runtime as "1h 23m 45s"
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := d - m*time.Minute
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s/time.Second)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s/time.Second)
	}
	return fmt.Sprintf("%ds", s/time.Second)
}
