package demos

import (
	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/state"
)

// Status colours of the traffic demo.
const (
	colourOnline   = "#00ff00"
	colourHighLoad = "#ff9900"
	colourCritical = "#ff0000"
)

func init() {
	register(Demo{
		Name:    "traffic",
		Short:   "server status board with bound colours",
		Options: []loom.Option{loom.WithTitle("Loom Real-Time Demo")},
		Build:   buildTraffic,
	})
}

func buildTraffic(app *loom.App) {
	s := app.State()
	resetTraffic(s)

	app.Text("⚡ Loom Real-Time Demo", core.WithSize("24px"), core.WithWeight("bold"))

	app.Row(func() {
		app.Text("Server Status: ")
		app.Text("$server_status", core.WithColor("$status_color"), core.WithWeight("bold"))
	})

	app.Card(func() {
		app.Text("Total Requests", core.WithSize("14px"), core.WithColor("#666"))
		app.Text("$visits", core.WithSize("36px"))
	})

	app.Row(func() {
		app.Button("💥 Simulate Traffic", func() { simulateTraffic(s) })
		app.Button("↺ Reset System", func() { resetTraffic(s) }, core.WithVariant("secondary"))
	})
}

func simulateTraffic(s *state.Store) {
	s.Update("visits", func(v any) any { return state.AsInt(v) + 1 })

	visits := state.As[int](s, "visits")
	switch {
	case visits > 10:
		s.Set("server_status", "CRITICAL OVERLOAD")
		s.Set("status_color", colourCritical)
	case visits > 5:
		s.Set("server_status", "HIGH LOAD")
		s.Set("status_color", colourHighLoad)
	}
}

func resetTraffic(s *state.Store) {
	s.Set("visits", 0)
	s.Set("server_status", "ONLINE")
	s.Set("status_color", colourOnline)
}
