package demos

import (
	"fmt"

	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/state"
)

func init() {
	register(Demo{
		Name:  "counter",
		Short: "click counter with a bound message",
		Build: buildCounter,
	})
	register(Demo{
		Name:    "debug",
		Short:   "minimal tree for the /debug endpoints",
		Options: []loom.Option{loom.WithDebug(true)},
		Build:   buildDebug,
	})
}

func buildCounter(app *loom.App) {
	s := app.State()
	s.Set("count", 0)
	s.Set("message", "Start clicking!")

	app.Text("Loom Demo")
	app.Row(func() {
		app.Button("Count Up", func() {
			n := state.AsInt(mustGet(s, "count")) + 1
			s.Set("count", n)
			s.Set("message", fmt.Sprintf("You clicked %d times", n))
		})
		app.Button("Reset", func() {
			s.Set("count", 0)
			s.Set("message", "Reset done.")
		})
	})
	app.Text("$message")
}

func buildDebug(app *loom.App) {
	s := app.State()
	s.Set("count", 0)
	s.Set("message", "Debug Mode")

	app.Text("Loom Debugger")
	app.Row(func() {
		app.Button("Click Me", func() {
			n := state.AsInt(mustGet(s, "count")) + 1
			s.Set("count", n)
			s.Set("message", fmt.Sprintf("Count: %d", n))
		})
	})
	app.Text("$message")
}

func mustGet(s *state.Store, name string) any {
	v, _ := s.Get(name)
	return v
}
