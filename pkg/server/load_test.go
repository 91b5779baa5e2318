package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadHistoryDropsOldest(t *testing.T) {
	h := NewLoadHistory(3*time.Second, time.Second)
	require.Equal(t, 3*time.Second, h.Window())
	require.Empty(t, h.Samples())

	for i := int64(1); i <= 5; i++ {
		h.Add(LoadSample{Timestamp: i})
	}
	got := h.Samples()
	require.Len(t, got, 3)
	require.Equal(t, []int64{3, 4, 5}, []int64{got[0].Timestamp, got[1].Timestamp, got[2].Timestamp})

	got[0].Timestamp = 99
	require.Equal(t, int64(3), h.Samples()[0].Timestamp)
}

func TestLoadHistoryBounds(t *testing.T) {
	h := NewLoadHistory(0, time.Millisecond)
	require.Equal(t, loadIntervalMin, h.Interval())
	require.Equal(t, loadWindowDefault, h.Window())

	h = NewLoadHistory(time.Hour, time.Second)
	require.Equal(t, loadMaxSamples*time.Second, h.Window())

	h = NewLoadHistory(time.Second, 10*time.Second)
	require.Equal(t, 10*time.Second, h.Window())
}

func TestReadLoadReportsAppState(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	f.store.Set("extra", true)
	f.srv.engine.Render()
	f.srv.engine.Render()

	got := f.srv.readLoad()
	require.Equal(t, 2, got.Variables)
	require.Equal(t, f.tree.Registry().Len(), got.Nodes)
	require.Equal(t, 2, got.Renders)
	require.Equal(t, 0, got.Sessions)
	require.Positive(t, got.Goroutines)
	require.Positive(t, got.HeapAlloc)

	conn := f.dial(t)
	readView(t, conn)
	require.Eventually(t, func() bool { return f.srv.readLoad().Sessions == 1 }, 5*time.Second, 10*time.Millisecond)
	require.Equal(t, 3, f.srv.readLoad().Renders)
}

func TestRecordLoadStopsWithContext(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.srv.recordLoad(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(f.srv.load.Samples()) == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("recordLoad did not return after cancel")
	}
	require.Equal(t, 1, f.srv.load.Samples()[0].Variables)
}
