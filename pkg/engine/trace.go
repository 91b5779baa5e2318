package engine

import (
	"sync"
	"time"

	"github.com/loom-ui/loom/pkg/render"
)

const (
	traceSamplesDefault       = 240
	defaultSlowRenderThreshold = 10 * time.Millisecond
)

// RenderSample is a single render trace sample.
type RenderSample struct {
	Timestamp int64   `json:"ts"`
	RenderMs  float64 `json:"renderMs"`
	// Cause is the event kind that triggered the render, or "render" for an
	// explicit Render call.
	Cause   string `json:"cause"`
	Outcome string `json:"outcome,omitempty"`
	Nodes   int    `json:"nodes"`
}

// RenderTimeline is the debug endpoint response shape.
type RenderTimeline struct {
	Samples []RenderSample `json:"samples"`
	// Renders counts every render recorded, including those that have
	// rotated out of Samples.
	Renders     int     `json:"renders"`
	SlowRenders int     `json:"slowRenders"`
	ThresholdMs float64 `json:"thresholdMs"`
}

// TraceBuffer stores recent render samples in a ring buffer.
type TraceBuffer struct {
	mu        sync.RWMutex
	samples   []RenderSample
	index     int
	count     int
	total     int
	slow      int
	threshold time.Duration
}

// NewTraceBuffer creates a new render trace buffer.
func NewTraceBuffer(capacity int, threshold time.Duration) *TraceBuffer {
	if capacity <= 0 {
		capacity = traceSamplesDefault
	}
	if threshold <= 0 {
		threshold = defaultSlowRenderThreshold
	}
	return &TraceBuffer{
		samples:   make([]RenderSample, capacity),
		threshold: threshold,
	}
}

// Capacity returns the buffer capacity.
func (b *TraceBuffer) Capacity() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}

// SetThreshold updates the slow render threshold.
func (b *TraceBuffer) SetThreshold(threshold time.Duration) {
	if threshold <= 0 {
		threshold = defaultSlowRenderThreshold
	}
	b.mu.Lock()
	b.threshold = threshold
	b.mu.Unlock()
}

// Threshold returns the slow render threshold.
func (b *TraceBuffer) Threshold() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.threshold
}

// Add records a render sample and updates the slow render count.
func (b *TraceBuffer) Add(sample RenderSample, d time.Duration) {
	b.mu.Lock()
	b.samples[b.index] = sample
	b.index = (b.index + 1) % len(b.samples)
	if b.count < len(b.samples) {
		b.count++
	}
	b.total++
	if d > b.threshold {
		b.slow++
	}
	b.mu.Unlock()
}

// Snapshot returns a chronological copy of samples and stats.
func (b *TraceBuffer) Snapshot() RenderTimeline {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return RenderTimeline{Renders: b.total, SlowRenders: b.slow, ThresholdMs: durationToMillis(b.threshold)}
	}

	result := make([]RenderSample, b.count)
	if b.count < len(b.samples) {
		copy(result, b.samples[:b.count])
	} else {
		copy(result, b.samples[b.index:])
		copy(result[len(b.samples)-b.index:], b.samples[:b.index])
	}

	return RenderTimeline{
		Samples:     result,
		Renders:     b.total,
		SlowRenders: b.slow,
		ThresholdMs: durationToMillis(b.threshold),
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// countViews returns the number of records in v, v included.
func countViews(v render.View) int {
	n := 1
	for _, c := range v.Children {
		n += countViews(c)
	}
	return n
}
