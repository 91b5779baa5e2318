package server

import (
	"context"
	"runtime"
	"sync"
	"time"
)

const (
	loadIntervalDefault = 5 * time.Second
	loadIntervalMin     = time.Second
	loadWindowDefault   = time.Minute
	loadMaxSamples      = 120
)

// LoadSample is one reading of how busy the served app is.
type LoadSample struct {
	Timestamp   int64 `json:"ts"`
	Sessions    int   `json:"sessions"`
	Variables   int   `json:"variables"`
	Nodes       int   `json:"nodes"`
	Renders     int   `json:"renders"`
	SlowRenders int   `json:"slowRenders"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	NumGC      uint32 `json:"numGC"`
}

// LoadHistory keeps the load samples taken within a sliding window,
// oldest first.
type LoadHistory struct {
	mu       sync.Mutex
	samples  []LoadSample
	limit    int
	interval time.Duration
}

// NewLoadHistory returns a history sampled every interval and covering
// window. Zero values pick 5s and one minute; the interval is at least a
// second and the history holds at most 120 samples.
func NewLoadHistory(window, interval time.Duration) *LoadHistory {
	if interval <= 0 {
		interval = loadIntervalDefault
	}
	interval = max(interval, loadIntervalMin)
	if window <= 0 {
		window = loadWindowDefault
	}
	return &LoadHistory{
		limit:    min(max(int(window/interval), 1), loadMaxSamples),
		interval: interval,
	}
}

// Interval returns the sampling interval.
func (h *LoadHistory) Interval() time.Duration { return h.interval }

// Window returns the time span the history can hold.
func (h *LoadHistory) Window() time.Duration {
	return time.Duration(h.limit) * h.interval
}

// Add appends sample, dropping the oldest one when the history is full.
func (h *LoadHistory) Add(sample LoadSample) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.samples) == h.limit {
		h.samples = append(h.samples[:0], h.samples[1:]...)
	}
	h.samples = append(h.samples, sample)
}

// Samples returns a copy of the history.
func (h *LoadHistory) Samples() []LoadSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LoadSample(nil), h.samples...)
}

// readLoad takes a sample of the server's sessions, the engine's store,
// tree and render trace, and the Go heap.
func (s *Server) readLoad() LoadSample {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	trace := s.engine.Trace().Snapshot()

	return LoadSample{
		Timestamp:   time.Now().UnixMilli(),
		Sessions:    s.SessionCount(),
		Variables:   s.engine.Store().Len(),
		Nodes:       s.engine.Tree().Registry().Len(),
		Renders:     trace.Renders,
		SlowRenders: trace.SlowRenders,
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   mem.HeapAlloc,
		NumGC:       mem.NumGC,
	}
}

// recordLoad fills s.load until ctx is done.
func (s *Server) recordLoad(ctx context.Context) {
	s.load.Add(s.readLoad())

	ticker := time.NewTicker(s.load.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.load.Add(s.readLoad())
		case <-ctx.Done():
			return
		}
	}
}
