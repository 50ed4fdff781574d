package detector

import (
	"testing"
	"time"

	"assaultbrain/internal/vision"
)

func sample(running, loading bool, confidence float64, at time.Time) Sample {
	return Sample{
		ProcessRunning: running,
		Classification: vision.Classification{IsLoadingScreen: loading, Confidence: confidence},
		At:             at,
	}
}

func TestDetector_DebounceByRepetition(t *testing.T) {
	config := DefaultConfig()
	config.ConsecutiveSamples = 3
	d := New(config)

	base := time.Now()
	verdicts := []bool{false, false, true, true, true}
	confirms := 0
	confirmIndex := -1

	for i, loading := range verdicts {
		// Low confidence: repetition required
		fired := d.Observe(sample(true, loading, 0.4, base.Add(time.Duration(i)*time.Second)))
		if fired {
			confirms++
			confirmIndex = i
		}
	}

	if confirms != 1 {
		t.Errorf("Expected exactly 1 confirmation, got %d", confirms)
	}
	if confirmIndex != 4 {
		t.Errorf("Confirmed at sample %d, want sample 4 (third consecutive true)", confirmIndex)
	}
	if d.Phase() != PhaseCooldown {
		t.Errorf("Phase after confirmation = %s, want Cooldown", d.Phase())
	}
}

func TestDetector_SingleShotHighConfidence(t *testing.T) {
	d := New(DefaultConfig())

	base := time.Now()
	if d.Observe(sample(true, false, 0, base)) {
		t.Fatal("Negative sample must not confirm")
	}
	if !d.Observe(sample(true, true, 0.8, base.Add(time.Second))) {
		t.Error("A single high-confidence positive should confirm immediately")
	}
}

func TestDetector_InterruptedStreakResets(t *testing.T) {
	config := DefaultConfig()
	config.ConsecutiveSamples = 3
	d := New(config)

	base := time.Now()
	seq := []bool{true, true, false, true, true}
	for i, loading := range seq {
		if d.Observe(sample(true, loading, 0.4, base.Add(time.Duration(i)*time.Second))) {
			t.Errorf("Sample %d must not confirm: the streak was interrupted", i)
		}
	}

	// The streak is at 2 after the interruption; one more completes it
	if !d.Observe(sample(true, true, 0.4, base.Add(5*time.Second))) {
		t.Error("Third consecutive positive after reset should confirm")
	}
}

func TestDetector_CooldownBlocksReconfirmation(t *testing.T) {
	config := DefaultConfig()
	config.Cooldown = 30 * time.Second
	d := New(config)

	base := time.Now()
	if !d.Observe(sample(true, true, 0.9, base)) {
		t.Fatal("Expected confirmation")
	}

	// Positives during cooldown are ignored
	for i := 1; i < 5; i++ {
		if d.Observe(sample(true, true, 0.9, base.Add(time.Duration(i)*time.Second))) {
			t.Errorf("Sample during cooldown must not confirm")
		}
	}
	if d.Phase() != PhaseCooldown {
		t.Errorf("Phase = %s, want Cooldown", d.Phase())
	}

	// Cooldown elapses; the detector resumes sampling and can confirm again
	if d.Observe(sample(true, false, 0, base.Add(31*time.Second))) {
		t.Error("Negative sample after cooldown must not confirm")
	}
	if d.Phase() != PhaseSampling {
		t.Errorf("Phase after cooldown = %s, want Sampling", d.Phase())
	}
	if !d.Observe(sample(true, true, 0.9, base.Add(32*time.Second))) {
		t.Error("High-confidence positive after cooldown should confirm")
	}
}

func TestDetector_ProcessLossResetsToIdle(t *testing.T) {
	config := DefaultConfig()
	config.ConsecutiveSamples = 3
	d := New(config)

	base := time.Now()
	d.Observe(sample(true, true, 0.4, base))
	d.Observe(sample(true, true, 0.4, base.Add(time.Second)))
	if d.Phase() != PhaseCandidateLoading {
		t.Fatalf("Phase = %s, want CandidateLoadingScreen", d.Phase())
	}

	// Process dies mid-streak
	d.Observe(sample(false, false, 0, base.Add(2*time.Second)))
	if d.Phase() != PhaseIdle {
		t.Errorf("Phase = %s, want Idle after process loss", d.Phase())
	}

	// The streak must not survive the reset
	d.Observe(sample(true, true, 0.4, base.Add(3*time.Second)))
	if d.Observe(sample(true, true, 0.4, base.Add(4*time.Second))) {
		t.Error("Two positives after reset must not confirm with ConsecutiveSamples=3")
	}
}

func TestDetector_IdleUntilProcessFound(t *testing.T) {
	d := New(DefaultConfig())

	if d.Phase() != PhaseIdle {
		t.Fatalf("Initial phase = %s, want Idle", d.Phase())
	}

	d.Observe(sample(false, false, 0, time.Now()))
	if d.Phase() != PhaseIdle {
		t.Errorf("Phase = %s, want Idle while process is absent", d.Phase())
	}

	d.Observe(sample(true, false, 0, time.Now()))
	if d.Phase() != PhaseSampling {
		t.Errorf("Phase = %s, want Sampling once the process is found", d.Phase())
	}
}
