package library

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	words      int
	failed     bool
	cached     bool
}

// StatsSnapshot is a point-in-time aggregate of recent document opens.
type StatsSnapshot struct {
	Count     int     `json:"count"`
	Failures  int     `json:"failures"`
	CacheHits int     `json:"cache_hits"`
	Words     int     `json:"words"`
	MinMs     int64   `json:"min_ms"`
	MaxMs     int64   `json:"max_ms"`
	AvgMs     float64 `json:"avg_ms"`
	P50Ms     float64 `json:"p50_ms"`
	P95Ms     float64 `json:"p95_ms"`
	P99Ms     float64 `json:"p99_ms"`
}

// ParseStats tracks parse latencies within a rolling window. Latency
// percentiles cover successful parses only; cache hits and failures are
// counted separately.
type ParseStats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewParseStats(maxAge time.Duration) *ParseStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &ParseStats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// Record adds a completed parse.
func (s *ParseStats) Record(durationMs int64, words int) {
	if durationMs < 0 {
		durationMs = 0
	}
	s.add(sample{durationMs: durationMs, words: words})
}

// RecordFailure adds a parse that returned an error.
func (s *ParseStats) RecordFailure() {
	s.add(sample{failed: true})
}

// RecordCacheHit adds a document served without parsing.
func (s *ParseStats) RecordCacheHit() {
	s.add(sample{cached: true})
}

func (s *ParseStats) add(sm sample) {
	now := time.Now()
	sm.timestamp = now

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sm)
}

func (s *ParseStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	var snap StatsSnapshot
	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		switch {
		case sm.failed:
			snap.Failures++
		case sm.cached:
			snap.CacheHits++
		default:
			values = append(values, sm.durationMs)
			sum += sm.durationMs
			snap.Words += sm.words
		}
	}
	if len(values) == 0 {
		return snap
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *ParseStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
