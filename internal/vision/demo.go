package vision

import (
	"context"
	"sync"
	"time"
)

// DemoMatch is the scripted matchup a DemoRig serves.
type DemoMatch struct {
	Ours   []string
	Theirs []string
}

// DemoRig implements every collaborator interface with a scripted
// match: a few menu frames, then a loading screen, then in-game. It
// exists so the pipeline can run end to end on machines without a
// capture backend.
type DemoRig struct {
	match DemoMatch

	// Frames before the loading screen appears, and how long it stays.
	MenuFrames    int
	LoadingFrames int

	mu      sync.Mutex
	samples int
}

// NewDemoRig creates a rig with a short menu phase and a loading screen
// that stays up long enough for any debounce setting.
func NewDemoRig(match DemoMatch) *DemoRig {
	return &DemoRig{
		match:         match,
		MenuFrames:    3,
		LoadingFrames: 10,
	}
}

// Capture returns a synthetic frame and advances the script.
func (d *DemoRig) Capture(ctx context.Context) (*Frame, error) {
	d.mu.Lock()
	d.samples++
	d.mu.Unlock()
	return &Frame{Data: []byte("demo"), Width: 1920, Height: 1080, CapturedAt: time.Now()}, nil
}

// Classify reports a high-confidence loading screen during the scripted
// loading window.
func (d *DemoRig) Classify(ctx context.Context, frame *Frame) (Classification, error) {
	d.mu.Lock()
	n := d.samples
	d.mu.Unlock()

	if n > d.MenuFrames && n <= d.MenuFrames+d.LoadingFrames {
		return Classification{IsLoadingScreen: true, Confidence: 0.9}, nil
	}
	return Classification{}, nil
}

// Running always reports the game process as present.
func (d *DemoRig) Running(ctx context.Context) bool {
	return true
}

// Extract returns the scripted rosters.
func (d *DemoRig) Extract(ctx context.Context, frame *Frame) Extraction {
	conf := func(n int) []float64 {
		cs := make([]float64, n)
		for i := range cs {
			cs[i] = 0.95
		}
		return cs
	}
	return Extraction{
		Status: ExtractionSuccess,
		Ours:   TeamNames{Names: d.match.Ours, Confidences: conf(len(d.match.Ours))},
		Theirs: TeamNames{Names: d.match.Theirs, Confidences: conf(len(d.match.Theirs))},
	}
}
