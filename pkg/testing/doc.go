// Package testing provides a component testing framework for Loom.
//
// # Quick Start
//
// Declare a tree, wrap it in a tester, and drive it without a network:
//
//	func TestCounter(t *testing.T) {
//	    store := state.New()
//	    store.Set("count", 0)
//	    tree := core.NewTree()
//	    tree.Text("Count: $count")
//	    tree.Button("Inc", func() {
//	        store.Update("count", func(v any) any { return state.AsInt(v) + 1 })
//	    })
//
//	    tester := loomtest.NewTesterWithT(t, tree, store)
//	    tester.Tap(loomtest.ByLabel("Inc"))
//
//	    if !tester.Find(loomtest.ByText("Count: 1")).Exists() {
//	        t.Error("expected 'Count: 1' text")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture and compare view snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Node identifiers are replaced by stable names such as "Text#0", so
// snapshots do not depend on declaration order across packages.
//
// Update snapshots with:
//
//	LOOM_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import loomtest "github.com/loom-ui/loom/pkg/testing"
package testing
