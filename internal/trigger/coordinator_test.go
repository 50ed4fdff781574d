package trigger

import (
	"testing"
	"time"
)

func TestCoordinator_FirstEventAccepted(t *testing.T) {
	c := New(DefaultConfig())

	d := c.Submit(Event{Source: SourcePeriodic})
	if !d.Accepted {
		t.Errorf("First event should be accepted, got %+v", d)
	}

	select {
	case ev := <-c.Jobs():
		if ev.Source != SourcePeriodic {
			t.Errorf("Queued source = %s, want periodic", ev.Source)
		}
	default:
		t.Error("Accepted event should be on the queue")
	}
}

func TestCoordinator_CooldownAcrossSources(t *testing.T) {
	config := DefaultConfig()
	config.Cooldown = 30 * time.Second
	c := New(config)

	base := time.Now()
	c.now = func() time.Time { return base }

	if d := c.Submit(Event{Source: SourcePeriodic}); !d.Accepted {
		t.Fatalf("First submit rejected: %+v", d)
	}

	// All sources share the same cooldown window
	for _, src := range []Source{SourcePeriodic, SourceHotkey, SourceScoreboard} {
		c.now = func() time.Time { return base.Add(29 * time.Second) }
		if d := c.Submit(Event{Source: src}); d.Accepted || d.Reason != SuppressCooldown {
			t.Errorf("%s trigger inside cooldown should be suppressed, got %+v", src, d)
		}
	}

	// Exactly at the boundary the cooldown has elapsed
	c.now = func() time.Time { return base.Add(30 * time.Second) }
	if d := c.Submit(Event{Source: SourceHotkey}); !d.Accepted {
		t.Errorf("Trigger after cooldown should be accepted, got %+v", d)
	}
}

func TestCoordinator_QueueFullDropsNewest(t *testing.T) {
	config := Config{Cooldown: 0, QueueSize: 2}
	c := New(config)

	if d := c.Submit(Event{Source: SourcePeriodic}); !d.Accepted {
		t.Fatalf("submit 1: %+v", d)
	}
	if d := c.Submit(Event{Source: SourceHotkey}); !d.Accepted {
		t.Fatalf("submit 2: %+v", d)
	}

	// Queue is full; the newest event is dropped, not blocked on
	d := c.Submit(Event{Source: SourceScoreboard})
	if d.Accepted || d.Reason != SuppressQueueFull {
		t.Errorf("Expected Suppressed(queue_full), got %+v", d)
	}

	// The two originally queued events are intact and in order
	first := <-c.Jobs()
	second := <-c.Jobs()
	if first.Source != SourcePeriodic || second.Source != SourceHotkey {
		t.Errorf("Queue order = %s, %s; want periodic, hotkey", first.Source, second.Source)
	}
}

func TestCoordinator_QueueFullDoesNotConsumeCooldown(t *testing.T) {
	config := Config{Cooldown: 30 * time.Second, QueueSize: 1}
	c := New(config)

	base := time.Now()
	c.now = func() time.Time { return base }

	c.Submit(Event{Source: SourcePeriodic})

	// Drain nothing; next event 31s later hits a full queue
	c.now = func() time.Time { return base.Add(31 * time.Second) }
	if d := c.Submit(Event{Source: SourceHotkey}); d.Reason != SuppressQueueFull {
		t.Fatalf("Expected queue_full, got %+v", d)
	}

	// Dropping must not have refreshed last_accepted_at: once the
	// queue drains, the same instant is still past cooldown
	<-c.Jobs()
	if d := c.Submit(Event{Source: SourceHotkey}); !d.Accepted {
		t.Errorf("Submit after drain should be accepted, got %+v", d)
	}
}

func TestCoordinator_SubmitAfterClose(t *testing.T) {
	c := New(DefaultConfig())
	c.Close()

	d := c.Submit(Event{Source: SourcePeriodic})
	if d.Accepted || d.Reason != SuppressShutdown {
		t.Errorf("Submit after Close = %+v, want Suppressed(shutdown)", d)
	}

	// Queue is closed so workers ranging over it exit
	if _, ok := <-c.Jobs(); ok {
		t.Error("Jobs channel should be closed")
	}

	// Close is idempotent
	c.Close()
}

func TestCoordinator_Stats(t *testing.T) {
	config := Config{Cooldown: time.Hour, QueueSize: 4}
	c := New(config)

	c.Submit(Event{Source: SourcePeriodic})
	c.Submit(Event{Source: SourceHotkey})
	c.Submit(Event{Source: SourceHotkey})

	accepted, suppressed := c.Stats()
	if accepted != 1 || suppressed != 2 {
		t.Errorf("Stats = %d accepted / %d suppressed, want 1/2", accepted, suppressed)
	}
}
