package loom_test

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/render"
	"github.com/loom-ui/loom/pkg/state"
	"github.com/loom-ui/loom/pkg/theme"
)

func Example() {
	app := loom.New(loom.WithTitle("Counter"))
	app.State().Set("count", 0)

	app.Column(func() {
		app.Text("# Count: $count")
		app.Button("Increment", func() {
			app.State().Update("count", func(v any) any { return state.AsInt(v) + 1 })
		})
	})

	fmt.Println(*app.Render().Children[0].Children[0].Content)
	// Output: Count: 0
}

func TestAppDispatch(t *testing.T) {
	app := loom.New()
	app.State().Set("count", 0)

	btn := app.Button("Inc", func() {
		app.State().Update("count", func(v any) any { return state.AsInt(v) + 1 })
	})
	app.Text("$count")

	res, err := app.Engine().Handle(engine.Event{Kind: engine.EventClick, ID: btn.ID()})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := *res.View.Children[1].Content; got != "1" {
		t.Errorf("content = %q, want 1", got)
	}
}

func TestWithStore(t *testing.T) {
	s := state.New()
	s.Set("who", "ada")
	app := loom.New(loom.WithStore(s))
	app.Text("hi $who")

	if got := *app.Render().Children[0].Content; got != "hi ada" {
		t.Errorf("content = %q", got)
	}
	if app.State() != s {
		t.Error("State() is not the supplied store")
	}
}

func TestHandlerServesPage(t *testing.T) {
	app := loom.New(
		loom.WithTitle("Mainframe"),
		loom.WithTheme(theme.Cyberpunk()),
		loom.WithDebug(true),
	)
	app.Text("# SYSTEM STATUS: ONLINE")

	if app.Server() != app.Server() {
		t.Fatal("Server() should be created once")
	}

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"<title>Mainframe</title>", "--loom-text: #00ff41;", "SYSTEM STATUS: ONLINE</h1>"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, err = ts.Client().Get(ts.URL + "/debug/tree")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("/debug/tree status = %d, want 200", resp.StatusCode)
	}
}

func TestRenderIsAView(t *testing.T) {
	var _ render.View = loom.New().Render()
}
