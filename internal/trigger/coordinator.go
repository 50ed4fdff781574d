// Package trigger turns detection events and manual inputs into
// analysis job submissions, enforcing one shared cooldown across all
// sources and a bounded queue in front of the worker pool.
package trigger

import (
	"log"
	"sync"
	"time"
)

// Source identifies what fired a trigger.
type Source string

const (
	SourcePeriodic   Source = "periodic"
	SourceHotkey     Source = "hotkey"
	SourceScoreboard Source = "scoreboard"
)

// Event is a single trigger. Created transiently, consumed immediately.
type Event struct {
	Source Source
	At     time.Time
}

// SuppressReason explains why an event was not accepted.
type SuppressReason string

const (
	SuppressNone      SuppressReason = ""
	SuppressCooldown  SuppressReason = "cooldown"
	SuppressQueueFull SuppressReason = "queue_full"
	SuppressShutdown  SuppressReason = "shutdown"
)

// Decision is the outcome of Submit.
type Decision struct {
	Accepted bool
	Reason   SuppressReason
}

// Config controls debounce behavior.
type Config struct {
	Cooldown  time.Duration
	QueueSize int
}

// DefaultConfig returns the standard trigger settings.
func DefaultConfig() Config {
	return Config{
		Cooldown:  30 * time.Second,
		QueueSize: 4,
	}
}

// Coordinator owns the cooldown timestamp and the job queue. It is the
// only holder of that state; nothing else tracks "last analysis time".
type Coordinator struct {
	config Config

	mu           sync.Mutex
	lastAccepted time.Time
	hasAccepted  bool
	closed       bool

	jobs chan Event

	accepted   int64
	suppressed int64

	now func() time.Time // overridable in tests
}

// New creates a coordinator with the given config.
func New(config Config) *Coordinator {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultConfig().QueueSize
	}
	return &Coordinator{
		config: config,
		jobs:   make(chan Event, config.QueueSize),
		now:    time.Now,
	}
}

// Submit applies the cooldown rule and, on acceptance, enqueues the
// event. A full queue drops the event rather than blocking: a stale
// analysis is worth less than keeping the sampling loop responsive.
func (c *Coordinator) Submit(ev Event) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.suppressed++
		return Decision{Reason: SuppressShutdown}
	}

	now := c.now()
	if c.hasAccepted && now.Sub(c.lastAccepted) < c.config.Cooldown {
		c.suppressed++
		log.Printf("[Trigger] Suppressed %s trigger, %s left on cooldown",
			ev.Source, (c.config.Cooldown - now.Sub(c.lastAccepted)).Round(time.Second))
		return Decision{Reason: SuppressCooldown}
	}

	if ev.At.IsZero() {
		ev.At = now
	}

	select {
	case c.jobs <- ev:
		c.lastAccepted = now
		c.hasAccepted = true
		c.accepted++
		log.Printf("[Trigger] Accepted %s trigger", ev.Source)
		return Decision{Accepted: true}
	default:
		c.suppressed++
		log.Printf("[Trigger] Dropped %s trigger, queue full", ev.Source)
		return Decision{Reason: SuppressQueueFull}
	}
}

// Jobs is the queue consumed by the worker pool. Closed by Close.
func (c *Coordinator) Jobs() <-chan Event {
	return c.jobs
}

// Close rejects further submissions and closes the queue so workers
// drain what is already enqueued and exit.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.jobs)
}

// Stats returns accepted/suppressed counts for the session summary.
func (c *Coordinator) Stats() (accepted, suppressed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted, c.suppressed
}
