package core

import (
	"maps"
	"slices"
	"sync"
)

// Registry maps node identifiers to nodes so that a client-supplied handle can
// be resolved back to the node, and its callback, that produced it.
//
// References held here are for lookup only. Nodes are owned by their parent
// container, and entries are never pruned because the tree does not change
// after construction.
type Registry struct {
	mu    sync.RWMutex
	nodes map[ID]Node
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[ID]Node)}
}

func (r *Registry) register(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[n.ID()] = n
}

// Lookup returns the node registered under id.
func (r *Registry) Lookup(id ID) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nodes[id]
	return n, ok
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// IDs returns all registered identifiers in ascending order, which is also
// construction order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.nodes))
}

// InputFor returns the first constructed Input bound to variable.
func (r *Registry) InputFor(variable string) (*Input, bool) {
	for _, id := range r.IDs() {
		n, _ := r.Lookup(id)
		if in, ok := n.(*Input); ok && in.Variable == variable {
			return in, true
		}
	}
	return nil, false
}
