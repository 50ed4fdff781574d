// Package detector classifies the stream of sampled frames into game
// phases and decides the single moment a loading screen counts as
// confirmed.
package detector

import (
	"log"
	"sync"
	"time"

	"assaultbrain/internal/vision"
)

// Phase is the detector's current position in the detection cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessFound
	PhaseSampling
	PhaseCandidateLoading
	PhaseConfirmed
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseProcessFound:
		return "ProcessFound"
	case PhaseSampling:
		return "Sampling"
	case PhaseCandidateLoading:
		return "CandidateLoadingScreen"
	case PhaseConfirmed:
		return "Confirmed"
	case PhaseCooldown:
		return "Cooldown"
	default:
		return "Unknown"
	}
}

// Sample is one observation from the sampling loop.
type Sample struct {
	ProcessRunning bool
	Classification vision.Classification
	At             time.Time
}

// Config controls confirmation thresholds.
type Config struct {
	// A single positive at or above this confidence confirms
	// immediately; below it, repetition is required.
	SingleShotConfidence float64
	// Consecutive low-confidence positives needed to confirm.
	ConsecutiveSamples int
	// Pause after a confirmation before sampling resumes.
	Cooldown time.Duration
}

// DefaultConfig returns the standard detection thresholds.
func DefaultConfig() Config {
	return Config{
		SingleShotConfidence: 0.6,
		ConsecutiveSamples:   3,
		Cooldown:             30 * time.Second,
	}
}

// Detector is the game-state machine. It owns its detection state
// exclusively; the sampling loop feeds it through Observe.
type Detector struct {
	config Config

	mu               sync.Mutex
	phase            Phase
	consecutive      int
	lastTransitionAt time.Time
	cooldownUntil    time.Time
}

// New creates a detector in the Idle phase.
func New(config Config) *Detector {
	if config.ConsecutiveSamples <= 0 {
		config.ConsecutiveSamples = 1
	}
	return &Detector{config: config, phase: PhaseIdle}
}

// Observe feeds one sample through the state machine. It returns true
// exactly once per detection cycle, at the sample that confirms the
// loading screen.
func (d *Detector) Observe(s Sample) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.At.IsZero() {
		s.At = time.Now()
	}

	if !s.ProcessRunning {
		if d.phase != PhaseIdle {
			d.transition(PhaseIdle, s.At)
			d.consecutive = 0
		}
		return false
	}

	switch d.phase {
	case PhaseIdle:
		d.transition(PhaseProcessFound, s.At)
		return d.classify(s)

	case PhaseProcessFound, PhaseSampling, PhaseCandidateLoading:
		return d.classify(s)

	case PhaseCooldown:
		if !s.At.Before(d.cooldownUntil) {
			d.transition(PhaseSampling, s.At)
			d.consecutive = 0
		}
		return false

	default:
		return false
	}
}

// classify applies the loading-screen verdict while in an active phase.
// Caller holds the lock.
func (d *Detector) classify(s Sample) bool {
	if !s.Classification.IsLoadingScreen {
		d.consecutive = 0
		if d.phase == PhaseCandidateLoading || d.phase == PhaseProcessFound {
			d.transition(PhaseSampling, s.At)
		}
		return false
	}

	d.consecutive++

	singleShot := s.Classification.Confidence >= d.config.SingleShotConfidence
	if !singleShot && d.consecutive < d.config.ConsecutiveSamples {
		if d.phase != PhaseCandidateLoading {
			d.transition(PhaseCandidateLoading, s.At)
		}
		return false
	}

	// Debounce satisfied. Confirm once, then cool down.
	d.transition(PhaseConfirmed, s.At)
	d.transition(PhaseCooldown, s.At)
	d.cooldownUntil = s.At.Add(d.config.Cooldown)
	d.consecutive = 0
	return true
}

// transition logs and applies a phase change. Caller holds the lock.
func (d *Detector) transition(to Phase, at time.Time) {
	if d.phase == to {
		return
	}
	log.Printf("[Detector] %s -> %s", d.phase, to)
	d.phase = to
	d.lastTransitionAt = at
}

// Phase returns the current phase.
func (d *Detector) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// LastTransitionAt returns when the phase last changed.
func (d *Detector) LastTransitionAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastTransitionAt
}
