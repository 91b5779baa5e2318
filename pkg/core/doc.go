// Package core provides the component model: node types, the context stack
// that parents nodes declaratively, and the registry that resolves client
// handles back to nodes.
//
// # Node Types
//
// Leaves are Text, Button, Input and Chart. Containers are Row, Column and
// Card, all represented by Container. Every node receives a process-unique ID
// when it is constructed, before it is attached anywhere.
//
// # Declaring a Layout
//
// A Tree tracks the open container scopes. Nodes declared inside a scope
// become children of that container, in declaration order:
//
//	tree := core.NewTree()
//	tree.Card(func() {
//	    tree.Text("Total Requests", core.WithSize("14px"))
//	    tree.Text("$visits", core.WithSize("36px"))
//	})
//	tree.Row(func() {
//	    tree.Button("Reset", reset, core.WithVariant("secondary"))
//	})
//
// Nodes declared outside any scope attach to the root Column.
//
// The tree never changes shape after construction. Only the state values
// that nodes reference change, and each render derives the view again.
package core
