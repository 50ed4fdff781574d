package orchestrator

import (
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
)

// Stats tracks session counters. Counters are atomics; the distinct
// matchup set is a bloom filter so a long session never grows an
// unbounded map.
type Stats struct {
	FramesSampled      atomic.Int64
	CaptureFailures    atomic.Int64
	AnalysesCompleted  atomic.Int64
	FallbacksPublished atomic.Int64
	IncompleteRosters  atomic.Int64

	mu       sync.Mutex
	seen     *bloom.BloomFilter
	distinct int64
}

func newStats() *Stats {
	return &Stats{
		// ~10k matchups at 1% false positives is plenty for a session
		seen: bloom.NewWithEstimates(10000, 0.01),
	}
}

// recordMatchup counts a fingerprint the first time it is seen.
func (s *Stats) recordMatchup(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seen.TestAndAdd([]byte(fingerprint)) {
		s.distinct++
	}
}

// StatsSnapshot is a point-in-time copy for logging.
type StatsSnapshot struct {
	FramesSampled      int64
	CaptureFailures    int64
	AnalysesCompleted  int64
	FallbacksPublished int64
	IncompleteRosters  int64
	DistinctMatchups   int64
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	distinct := s.distinct
	s.mu.Unlock()
	return StatsSnapshot{
		FramesSampled:      s.FramesSampled.Load(),
		CaptureFailures:    s.CaptureFailures.Load(),
		AnalysesCompleted:  s.AnalysesCompleted.Load(),
		FallbacksPublished: s.FallbacksPublished.Load(),
		IncompleteRosters:  s.IncompleteRosters.Load(),
		DistinctMatchups:   distinct,
	}
}

// Stats exposes the orchestrator's counters.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}
