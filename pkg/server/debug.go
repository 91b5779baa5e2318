package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/engine"
	"github.com/loom-ui/loom/pkg/render"
)

// maxTreeDepth limits recursion depth to prevent stack overflow from malformed trees.
const maxTreeDepth = 500

// TreeNode represents a node in the serialized component tree.
type TreeNode struct {
	Type      string     `json:"type"`
	ID        core.ID    `json:"id"`
	Depth     int        `json:"depth"`
	Binding   string     `json:"binding,omitempty"`
	Content   string     `json:"content,omitempty"`
	Label     string     `json:"label,omitempty"`
	HasAction bool       `json:"hasAction,omitempty"`
	Truncated bool       `json:"truncated,omitempty"`
	Children  []TreeNode `json:"children,omitempty"`
}

// RegistryEntry is one row of the component registry listing.
type RegistryEntry struct {
	ID   core.ID `json:"id"`
	Type string  `json:"type"`
}

// handleDebugState returns the store contents as JSON.
func (s *Server) handleDebugState(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.Store().Snapshot()
	safe := make(map[string]any, len(snapshot))
	for name, v := range snapshot {
		safe[name] = render.JSONSafe(v)
	}
	writeJSON(w, safe)
}

// handleDebugRegistry returns every registered node in identifier order.
func (s *Server) handleDebugRegistry(w http.ResponseWriter, r *http.Request) {
	reg := s.engine.Tree().Registry()
	ids := reg.IDs()
	entries := make([]RegistryEntry, 0, len(ids))
	for _, id := range ids {
		if n, ok := reg.Lookup(id); ok {
			entries = append(entries, RegistryEntry{ID: id, Type: n.Kind().String()})
		}
	}
	writeJSON(w, entries)
}

// handleDebugTree returns the declared component tree, without resolving
// bindings.
func (s *Server) handleDebugTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SerializeTree(s.engine.Tree().Root(), 0))
}

// handleDebugRenders returns recent render timings. Query parameters:
// limit keeps the newest N samples, min_ms keeps renders at least that slow
// and cause keeps one trigger ("click", "input" or "render").
func (s *Server) handleDebugRenders(w http.ResponseWriter, r *http.Request) {
	resp := s.engine.Trace().Snapshot()
	applyRenderFilters(r, &resp)
	writeJSON(w, resp)
}

// LoadReport is the /debug/load response shape.
type LoadReport struct {
	Current    LoadSample   `json:"current"`
	Samples    []LoadSample `json:"samples"`
	IntervalMs float64      `json:"intervalMs"`
}

// handleDebugLoad returns a fresh load sample and the recorded history.
// Query parameters: window keeps samples from the last N seconds and limit
// the newest N.
func (s *Server) handleDebugLoad(w http.ResponseWriter, r *http.Request) {
	resp := LoadReport{Current: s.readLoad()}
	if s.load != nil {
		resp.Samples = applyLoadFilters(r, s.load.Samples())
		resp.IntervalMs = float64(s.load.Interval()) / float64(time.Millisecond)
	}
	writeJSON(w, resp)
}

func applyRenderFilters(r *http.Request, resp *engine.RenderTimeline) {
	var filters []func(engine.RenderSample) bool

	if v := parseFloatQuery(r, "min_ms"); v > 0 {
		filters = append(filters, func(s engine.RenderSample) bool { return s.RenderMs >= v })
	}
	if cause := r.URL.Query().Get("cause"); cause != "" {
		filters = append(filters, func(s engine.RenderSample) bool { return s.Cause == cause })
	}

	if len(filters) > 0 {
		filtered := make([]engine.RenderSample, 0, len(resp.Samples))
	outer:
		for _, sample := range resp.Samples {
			for _, f := range filters {
				if !f(sample) {
					continue outer
				}
			}
			filtered = append(filtered, sample)
		}
		resp.Samples = filtered
	}

	if limit := parseLimit(r); limit > 0 && len(resp.Samples) > limit {
		resp.Samples = resp.Samples[len(resp.Samples)-limit:]
	}
}

func applyLoadFilters(r *http.Request, samples []LoadSample) []LoadSample {
	if seconds := parseFloatQuery(r, "window"); seconds > 0 {
		cutoff := time.Now().Add(-time.Duration(seconds * float64(time.Second))).UnixMilli()
		i := 0
		for i < len(samples) && samples[i].Timestamp < cutoff {
			i++
		}
		samples = samples[i:]
	}
	if limit := parseLimit(r); limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	return samples
}

func parseLimit(r *http.Request) int {
	value := r.URL.Query().Get("limit")
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

func parseFloatQuery(r *http.Request, key string) float64 {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// SerializeTree converts n into a TreeNode, stopping at maxTreeDepth.
func SerializeTree(n core.Node, depth int) TreeNode {
	node := TreeNode{Type: n.Kind().String(), ID: n.ID(), Depth: depth}
	switch n := n.(type) {
	case *core.Text:
		node.Content = n.Content
	case *core.Button:
		node.Label = n.Label
		node.HasAction = n.OnClick != nil
	case *core.Input:
		node.Binding = n.Variable
		node.Label = n.Label
	case *core.Chart:
		node.Binding = n.Variable
		node.Label = n.Title
	case *core.Container:
		if depth >= maxTreeDepth {
			node.Truncated = n.Len() > 0
			return node
		}
		n.VisitChildren(func(child core.Node) bool {
			node.Children = append(node.Children, SerializeTree(child, depth+1))
			return true
		})
	}
	return node
}

// writeJSON encodes v to a buffer first so encoding errors become a 500
// rather than a truncated body.
func writeJSON(w http.ResponseWriter, v any) {
	defer func() {
		if rec := recover(); rec != nil {
			http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
		}
	}()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
