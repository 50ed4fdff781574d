// Package sink delivers analysis results to their consumers: the log,
// connected overlay clients, and an optional Discord webhook. Publishing
// is fire-and-forget from the pipeline's perspective.
package sink

import (
	"context"
	"log"
	"strings"

	"assaultbrain/internal/analysis"
)

// Sink receives finished analysis results.
type Sink interface {
	Publish(ctx context.Context, res *analysis.AnalysisResult) error
}

// NotifyFunc delivers informational pipeline events (incomplete roster,
// capture trouble) without a full result attached.
type NotifyFunc func(event, detail string)

// LogSink writes results to the process log. Always enabled.
type LogSink struct{}

// Publish logs the headline numbers and recommendations.
func (LogSink) Publish(ctx context.Context, res *analysis.AnalysisResult) error {
	log.Printf("[Sink] Win probability %.0f%% (%s confidence)", res.WinProbability*100, res.Confidence)
	if len(res.Strengths) > 0 {
		log.Printf("[Sink] Strengths: %s", strings.Join(res.Strengths, "; "))
	}
	if len(res.Weaknesses) > 0 {
		log.Printf("[Sink] Weaknesses: %s", strings.Join(res.Weaknesses, "; "))
	}
	for _, a := range res.Advice {
		log.Printf("[Sink] Advice: %s", a)
	}
	for _, item := range res.ItemPriorities {
		log.Printf("[Sink] Items: %s", item)
	}
	return nil
}

// Fanout publishes to every sink, logging failures instead of
// propagating them; one slow consumer must not block the rest.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a fanout over the given sinks.
func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

// Publish delivers the result to every sink.
func (f *Fanout) Publish(ctx context.Context, res *analysis.AnalysisResult) error {
	for _, s := range f.sinks {
		if err := s.Publish(ctx, res); err != nil {
			log.Printf("[Sink] Publish failed: %v", err)
		}
	}
	return nil
}
