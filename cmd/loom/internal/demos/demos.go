// Package demos holds the example applications bundled with the loom CLI.
package demos

import (
	"fmt"
	"sort"

	"github.com/loom-ui/loom/pkg/loom"
)

// Demo is a named example application.
type Demo struct {
	Name  string
	Short string
	// Options are applied after the caller's options, so a demo can pin its
	// own theme or title.
	Options []loom.Option
	// Build declares the demo's state and components on app.
	Build func(app *loom.App)
}

var registry = map[string]Demo{}

func register(d Demo) {
	if _, dup := registry[d.Name]; dup {
		panic(fmt.Sprintf("demos: %q registered twice", d.Name))
	}
	registry[d.Name] = d
}

// All returns every demo ordered by name.
func All() []Demo {
	out := make([]Demo, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the demo called name.
func Lookup(name string) (Demo, bool) {
	d, ok := registry[name]
	return d, ok
}

// New builds the demo called name into a fresh App.
func New(name string, opts ...loom.Option) (*loom.App, error) {
	d, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown demo %q", name)
	}
	all := append(append([]loom.Option(nil), opts...), d.Options...)
	app := loom.New(all...)
	d.Build(app)
	return app, nil
}
