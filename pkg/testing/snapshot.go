package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/loom-ui/loom/pkg/render"
)

// UpdateEnv names the environment variable that switches MatchesFile into
// update mode.
const UpdateEnv = "LOOM_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the structure of a rendered view.
type Snapshot struct {
	View *Node `json:"view"`
}

// Node represents one record in the serialized view. ID is a stable name
// such as "Button#1" in place of the process-wide node identifier.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Content  *string        `json:"content,omitempty"`
	Markup   render.Markup  `json:"markup,omitempty"`
	Label    *string        `json:"label,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// CaptureSnapshot captures the current view.
func (t *Tester) CaptureSnapshot() *Snapshot {
	return CaptureView(t.view)
}

// CaptureView captures v.
func CaptureView(v render.View) *Snapshot {
	return &Snapshot{View: captureNode(v, &typeCounter{})}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When LOOM_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and this snapshot.
// Returns empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return cmp.Diff(string(b), string(a))
}

// --- Internal ---

// typeCounter assigns stable IDs like "Text#0", "Text#1".
type typeCounter struct {
	counts map[string]int
}

func (c *typeCounter) next(typeName string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[typeName]
	c.counts[typeName] = n + 1
	return fmt.Sprintf("%s#%d", typeName, n)
}

func captureNode(v render.View, counter *typeCounter) *Node {
	node := &Node{
		ID:      counter.next(v.Type),
		Type:    v.Type,
		Content: v.Content,
		Markup:  v.Markup,
		Label:   v.Label,
	}
	if len(v.Props) > 0 {
		node.Props = captureProps(v.Props)
	}
	for _, child := range v.Children {
		node.Children = append(node.Children, captureNode(child, counter))
	}
	return node
}

func captureProps(p render.Props) map[string]any {
	props := make(map[string]any, len(p))
	for k, v := range p {
		props[k] = render.JSONSafe(v)
	}
	return props
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
