// Package testbed provides fixture trees for the testing framework.
package testbed

import (
	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/state"
)

// Counter declares a card holding a heading bound to "count", an
// increment button and a reset button. OnTap, if set, observes every
// increment.
type Counter struct {
	Initial int
	OnTap   func(count int)
}

// Build declares the fixture and returns its tree and store.
func (c Counter) Build() (*core.Tree, *state.Store) {
	store := state.New()
	store.Set("count", c.Initial)

	tree := core.NewTree()
	tree.Card(func() {
		tree.Text("# Count: $count")
		tree.Row(func() {
			tree.Button("Increment", func() {
				store.Update("count", func(v any) any { return state.AsInt(v) + 1 })
				if c.OnTap != nil {
					c.OnTap(state.AsInt(mustGet(store, "count")))
				}
			})
			tree.Button("Reset", func() { store.Set("count", 0) }, core.WithVariant("secondary"))
		})
	})
	return tree, store
}

// Form declares a column with a name input, an age input and a greeting
// bound to both.
type Form struct{}

// Build declares the fixture and returns its tree and store.
func (Form) Build() (*core.Tree, *state.Store) {
	store := state.New()
	store.Set("name", "")
	store.Set("age", 0)

	tree := core.NewTree()
	tree.Column(func() {
		tree.Input("name", core.WithLabel("Name"))
		tree.Input("age", core.WithLabel("Age"), core.WithInputType("number"))
		tree.Text("Hello $name, age $age")
		tree.Button("Fail", func() {
			store.Set("name", "failing")
			panic("form callback failed")
		}, core.WithVariant("danger"))
	})
	return tree, store
}

func mustGet(s *state.Store, name string) any {
	v, _ := s.Get(name)
	return v
}
