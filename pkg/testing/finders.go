package testing

import (
	"fmt"
	"strings"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/render"
)

// Finder locates records in a rendered view tree.
type Finder interface {
	// Evaluate returns all matching records under root (depth-first pre-order).
	Evaluate(root *render.View) []*render.View
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	views  []*render.View
	finder Finder
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *render.View {
	if len(r.views) == 0 {
		panic(fmt.Sprintf("Finder found no records: %s", r.description()))
	}
	return r.views[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *render.View {
	if len(r.views) == 0 {
		return nil
	}
	return r.views[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *render.View {
	if index < 0 || index >= len(r.views) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.views), r.description()))
	}
	return r.views[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*render.View {
	return r.views
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.views)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.views) > 0
}

// Content returns the text content of the first match. Panics if no matches.
func (r FinderResult) Content() string {
	v := r.First()
	if v.Content == nil {
		return ""
	}
	return *v.Content
}

// Prop returns a property of the first match. Panics if no matches.
func (r FinderResult) Prop(name string) any {
	return r.First().Props[name]
}

// --- Concrete finders ---

type predicateFinder struct {
	fn   func(*render.View) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *render.View) []*render.View {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches records satisfying fn.
func ByPredicate(description string, fn func(*render.View) bool) Finder {
	return &predicateFinder{fn: fn, desc: description}
}

// ByType returns a finder that matches records of the given node type
// ("Text", "Button", "Row", ...).
func ByType(typ string) Finder {
	return ByPredicate(fmt.Sprintf("ByType(%s)", typ), func(v *render.View) bool {
		return v.Type == typ
	})
}

// ByID returns a finder that matches the record of one node.
func ByID(id core.ID) Finder {
	return ByPredicate(fmt.Sprintf("ByID(%d)", id), func(v *render.View) bool {
		return v.ID == id
	})
}

// ByText returns a finder that matches Text records whose rendered content
// equals text exactly. Heading markers are not part of the content.
func ByText(text string) Finder {
	return ByPredicate(fmt.Sprintf("ByText(%q)", text), func(v *render.View) bool {
		return v.Content != nil && *v.Content == text
	})
}

// ByTextContaining returns a finder that matches Text records whose
// rendered content contains substring.
func ByTextContaining(substring string) Finder {
	return ByPredicate(fmt.Sprintf("ByTextContaining(%q)", substring), func(v *render.View) bool {
		return v.Content != nil && strings.Contains(*v.Content, substring)
	})
}

// ByLabel returns a finder that matches Button records by label and Input
// records by their label property.
func ByLabel(label string) Finder {
	return ByPredicate(fmt.Sprintf("ByLabel(%q)", label), func(v *render.View) bool {
		if v.Label != nil {
			return *v.Label == label
		}
		if v.Type == "Input" {
			return v.Props["label"] == label
		}
		return false
	})
}

// ByMarkup returns a finder that matches Text records of the given markup.
func ByMarkup(m render.Markup) Finder {
	return ByPredicate(fmt.Sprintf("ByMarkup(%s)", m), func(v *render.View) bool {
		return v.Content != nil && v.Markup == m
	})
}

// ByVariable returns a finder that matches Input records bound to name.
func ByVariable(name string) Finder {
	return ByPredicate(fmt.Sprintf("ByVariable(%q)", name), func(v *render.View) bool {
		return v.Type == "Input" && v.Props["variable"] == name
	})
}

// descendantFinder finds records matching 'matching' that are descendants
// of records matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *render.View) []*render.View {
	var results []*render.View
	seen := make(map[*render.View]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for i := range ancestor.Children {
			for _, m := range f.matching.Evaluate(&ancestor.Children[i]) {
				if !seen[m] {
					seen[m] = true
					results = append(results, m)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches records satisfying 'matching'
// that are descendants of records matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds records matching 'matching' that are ancestors
// of records matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root *render.View) []*render.View {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	var results []*render.View
	for _, candidate := range f.matching.Evaluate(root) {
		for _, desc := range descendants {
			if candidate != desc && isAncestorOf(candidate, desc) {
				results = append(results, candidate)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches records satisfying 'matching'
// that are ancestors of records matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// isAncestorOf returns true if ancestor contains descendant in its subtree.
func isAncestorOf(ancestor, descendant *render.View) bool {
	found := false
	walkTree(ancestor, func(v *render.View) bool {
		if v == descendant {
			found = true
			return false // stop
		}
		return true
	})
	return found
}

// collectMatches performs depth-first pre-order traversal, collecting
// records that satisfy the predicate.
func collectMatches(root *render.View, predicate func(*render.View) bool) []*render.View {
	var results []*render.View
	walkTree(root, func(v *render.View) bool {
		if predicate(v) {
			results = append(results, v)
		}
		return true
	})
	return results
}

// walkTree performs a depth-first pre-order traversal of the view tree.
// The visitor returns false to stop traversal.
func walkTree(root *render.View, visitor func(*render.View) bool) bool {
	if !visitor(root) {
		return false
	}
	for i := range root.Children {
		if !walkTree(&root.Children[i], visitor) {
			return false
		}
	}
	return true
}
