package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDebugRenders(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	for range 3 {
		status, _ := f.get(t, "/view.json")
		require.Equal(t, http.StatusOK, status)
	}

	status, body := f.get(t, "/debug/renders")
	require.Equal(t, http.StatusOK, status)
	require.Len(t, gjson.Get(body, "samples").Array(), 3)
	require.Equal(t, int64(3), gjson.Get(body, "renders").Int())
	require.Equal(t, "render", gjson.Get(body, "samples.0.cause").String())
	require.Equal(t, int64(6), gjson.Get(body, "samples.0.nodes").Int())
	require.Equal(t, float64(10), gjson.Get(body, "thresholdMs").Float())

	_, body = f.get(t, "/debug/renders?limit=1")
	require.Len(t, gjson.Get(body, "samples").Array(), 1)

	_, body = f.get(t, "/debug/renders?cause=click")
	require.Empty(t, gjson.Get(body, "samples").Array())

	_, body = f.get(t, "/debug/renders?min_ms=60000")
	require.Empty(t, gjson.Get(body, "samples").Array())
}

func TestDebugLoad(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	f.srv.load.Add(LoadSample{Timestamp: 1})
	f.srv.load.Add(LoadSample{Timestamp: time.Now().UnixMilli()})

	status, body := f.get(t, "/debug/load")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, int64(1), gjson.Get(body, "current.variables").Int())
	require.Equal(t, int64(f.tree.Registry().Len()), gjson.Get(body, "current.nodes").Int())
	require.Positive(t, gjson.Get(body, "current.heapAlloc").Int())
	require.Equal(t, float64(5000), gjson.Get(body, "intervalMs").Float())
	require.Len(t, gjson.Get(body, "samples").Array(), 2)

	_, body = f.get(t, "/debug/load?window=60")
	require.Len(t, gjson.Get(body, "samples").Array(), 1)

	_, body = f.get(t, "/debug/load?limit=1")
	require.Len(t, gjson.Get(body, "samples").Array(), 1)
}

func TestDebugDiagnosticsHiddenWithoutDebug(t *testing.T) {
	f := newFixture(t, Options{})
	require.Nil(t, f.srv.load)
	for _, path := range []string{"/debug/renders", "/debug/load"} {
		status, _ := f.get(t, path)
		require.Equal(t, http.StatusNotFound, status, path)
	}
}
