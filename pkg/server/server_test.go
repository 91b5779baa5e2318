package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/engine"
	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/logging"
	"github.com/loom-ui/loom/pkg/state"
)

type fixture struct {
	store *state.Store
	tree  *core.Tree
	inc   *core.Button
	boom  *core.Button
	name  *core.Input
	srv   *Server
	ts    *httptest.Server
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	old := loomerrors.Handler()
	loomerrors.SetHandler(&loomerrors.LogHandler{Logger: logging.Discard()})
	t.Cleanup(func() { loomerrors.SetHandler(old) })

	f := &fixture{store: state.New(), tree: core.NewTree()}
	f.store.Set("count", 0)
	f.tree.Column(func() {
		f.tree.Text("$count")
		f.inc = f.tree.Button("Inc", func() {
			f.store.Update("count", func(v any) any { return state.AsInt(v) + 1 })
		})
		f.boom = f.tree.Button("Boom", func() {
			f.store.Set("count", -1)
			panic("boom")
		})
		f.name = f.tree.Input("name", core.WithLabel("Name"))
	})

	opts.Logger = logging.Discard()
	f.srv = New(engine.New(f.tree, f.store), opts)
	f.ts = httptest.NewServer(f.srv.Handler())
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + DefaultWSPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func readView(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	typ, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, typ)
	return data
}

func counter(view []byte) string {
	return gjson.GetBytes(view, "children.0.children.0.content").String()
}

func TestInitialViewThenClick(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)

	initial := readView(t, conn)
	require.Equal(t, "Column", gjson.GetBytes(initial, "type").String())
	require.Equal(t, "0", counter(initial))

	click := fmt.Sprintf(`{"type":"click","id":%d}`, f.inc.ID())
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(click)))
	require.Equal(t, "1", counter(readView(t, conn)))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(click)))
	require.Equal(t, "2", counter(readView(t, conn)))
}

func TestUnknownIDStillRerenders(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)
	readView(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"click","id":999999999}`)))
	require.Equal(t, "0", counter(readView(t, conn)))
}

func TestUnreadableClickIDStillRerenders(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)
	readView(t, conn)

	for _, frame := range []string{`{"type":"click","id":"stale-abc"}`, `{"type":"click"}`, `{"type":"click","id":-4}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		require.Equal(t, "0", counter(readView(t, conn)), frame)
	}

	_, body := f.get(t, "/metrics")
	require.Contains(t, body, `loom_events_total{kind="click",outcome="ignored"} 3`)
	require.NotContains(t, body, "loom_malformed_frames_total 1")
}

func TestMalformedFramesAreSkipped(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)
	readView(t, conn)

	for _, frame := range []string{`not json`, `{"id":1}`, `{"type":"hover","id":1}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	}
	click := fmt.Sprintf(`{"type":"click","id":%d}`, f.inc.ID())
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(click)))

	// The first reply is the one for the valid click; the others produced none.
	require.Equal(t, "1", counter(readView(t, conn)))

	_, body := f.get(t, "/metrics")
	require.Contains(t, body, "loom_malformed_frames_total 2")
	require.Contains(t, body, `loom_events_total{kind="other",outcome="dropped"} 1`)
	require.Contains(t, body, `loom_events_total{kind="click",outcome="fired"} 1`)
	require.Contains(t, body, "loom_sessions_active 1")
}

func TestCallbackPanicStillDeliversView(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)
	readView(t, conn)

	boom := fmt.Sprintf(`{"type":"click","id":%d}`, f.boom.ID())
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(boom)))
	require.Equal(t, "-1", counter(readView(t, conn)))

	// The session survives the failure.
	click := fmt.Sprintf(`{"type":"click","id":%d}`, f.inc.ID())
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(click)))
	require.Equal(t, "0", counter(readView(t, conn)))

	_, body := f.get(t, "/metrics")
	require.Contains(t, body, "loom_callback_failures_total 1")
}

func TestInputEvent(t *testing.T) {
	f := newFixture(t, Options{})
	conn := f.dial(t)
	readView(t, conn)

	edit := fmt.Sprintf(`{"type":"input","id":%d,"value":"ada"}`, f.name.ID())
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(edit)))
	view := readView(t, conn)
	require.Equal(t, "ada", gjson.GetBytes(view, "children.0.children.3.props.value").String())

	v, ok := f.store.Get("name")
	require.True(t, ok)
	require.Equal(t, "ada", v)
}

func TestRateLimitedSessionStillHandlesEveryEvent(t *testing.T) {
	f := newFixture(t, Options{EventsPerSecond: 200, EventBurst: 1})
	conn := f.dial(t)
	readView(t, conn)

	click := fmt.Sprintf(`{"type":"click","id":%d}`, f.inc.ID())
	for range 5 {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(click)))
	}
	var last []byte
	for range 5 {
		last = readView(t, conn)
	}
	require.Equal(t, "5", counter(last))
}

func TestRejectsForeignOrigin(t *testing.T) {
	f := newFixture(t, Options{})
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + DefaultWSPath
	header := http.Header{"Origin": []string{"http://elsewhere.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHTTPEndpoints(t *testing.T) {
	f := newFixture(t, Options{Title: "Counter"})

	status, body := f.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "<title>Counter</title>")
	require.Contains(t, body, `data-ws="/ws"`)
	require.Contains(t, body, ">Inc</button>")
	require.Contains(t, body, "--loom-primary: #2563eb;")
	require.Contains(t, body, "new WebSocket(")

	status, body = f.get(t, "/view.json")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "0", counter([]byte(body)))

	status, body = f.get(t, "/healthz")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"ok"}`, body)

	resp, err := http.Post(f.ts.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	status, _ = f.get(t, "/debug/state")
	require.Equal(t, http.StatusNotFound, status)
}

func TestDebugEndpoints(t *testing.T) {
	f := newFixture(t, Options{Debug: true})
	f.store.Set("ratio", []float64{1, 2})

	status, body := f.get(t, "/debug/state")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"count":0,"ratio":[1,2]}`, body)

	status, body = f.get(t, "/debug/registry")
	require.Equal(t, http.StatusOK, status)
	entries := gjson.Parse(body).Array()
	require.Len(t, entries, f.tree.Registry().Len())
	require.Equal(t, "Column", entries[0].Get("type").String())

	status, body = f.get(t, "/debug/tree")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "$count", gjson.Get(body, "children.0.children.0.content").String())
	require.True(t, gjson.Get(body, "children.0.children.1.hasAction").Bool())
	require.Equal(t, "name", gjson.Get(body, "children.0.children.3.binding").String())

	resp, err := http.Post(f.ts.URL+"/debug/tree", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSerializeTreeDepthLimit(t *testing.T) {
	tree := core.NewTree()
	var nest func(int)
	nest = func(n int) {
		if n == 0 {
			tree.Text("leaf")
			return
		}
		tree.Column(func() { nest(n - 1) })
	}
	nest(maxTreeDepth + 5)

	node := SerializeTree(tree.Root(), 0)
	depth := 0
	for len(node.Children) > 0 {
		node = node.Children[0]
		depth++
	}
	require.Equal(t, maxTreeDepth, depth)
	require.True(t, node.Truncated)
}

func TestServeShutsDownSessions(t *testing.T) {
	old := loomerrors.Handler()
	loomerrors.SetHandler(&loomerrors.LogHandler{Logger: logging.Discard()})
	defer loomerrors.SetHandler(old)

	srv := New(engine.New(nil, nil), Options{Logger: logging.Discard()})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+DefaultWSPath, nil)
	require.NoError(t, err)
	defer conn.Close()
	readView(t, conn)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "err = %v", err)
}

func TestListenAndServeBadAddr(t *testing.T) {
	srv := New(engine.New(nil, nil), Options{Logger: logging.Discard()})
	err := srv.ListenAndServe(context.Background(), "256.0.0.1:bad")
	require.Error(t, err)
}
