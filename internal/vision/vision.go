// Package vision defines the narrow interfaces the pipeline consumes
// from the capture/recognition side. No OCR or image logic lives in
// this repository; implementations are injected at startup.
package vision

import (
	"context"
	"errors"
	"time"
)

// ErrCaptureUnavailable is returned by Capture when no target window is
// active. The sampling loop retries with backoff; it is never fatal.
var ErrCaptureUnavailable = errors.New("capture source unavailable")

// Frame is an opaque captured image. The pipeline never inspects the
// pixel data, it only passes frames to the classifier and extractor.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	CapturedAt time.Time
}

// ScreenSource produces frames from the live screen.
type ScreenSource interface {
	Capture(ctx context.Context) (*Frame, error)
}

// Classification is the loading-screen verdict for a single frame.
type Classification struct {
	IsLoadingScreen bool
	Confidence      float64
}

// FrameClassifier decides whether a frame shows the loading screen.
type FrameClassifier interface {
	Classify(ctx context.Context, frame *Frame) (Classification, error)
}

// ProcessWatcher reports whether the game process is running.
type ProcessWatcher interface {
	Running(ctx context.Context) bool
}

// ExtractionStatus distinguishes "nothing on screen" from a recognition
// failure from a (possibly partial) success, so the caller decides the
// fallback policy instead of the extractor.
type ExtractionStatus int

const (
	ExtractionNotDetected ExtractionStatus = iota
	ExtractionError
	ExtractionSuccess
)

func (s ExtractionStatus) String() string {
	switch s {
	case ExtractionNotDetected:
		return "not_detected"
	case ExtractionError:
		return "error"
	case ExtractionSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// TeamNames is one side's extracted names with per-name confidence.
// May hold fewer than five entries when recognition is partial.
type TeamNames struct {
	Names       []string
	Confidences []float64
}

// Extraction is the tri-state result of reading rosters off a frame.
// Reason is set only when Status is ExtractionError.
type Extraction struct {
	Status ExtractionStatus
	Reason string
	Ours   TeamNames
	Theirs TeamNames
}

// TeamExtractor reads the two rosters from a loading-screen frame.
type TeamExtractor interface {
	Extract(ctx context.Context, frame *Frame) Extraction
}
