// Package render converts a component tree into view records, resolving
// "$name" bindings against a state source.
//
// Rendering is a pure function of the tree and the source contents at call
// time: it mutates neither, and two calls with unchanged inputs produce equal
// records.
package render

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/loom-ui/loom/pkg/core"
	"github.com/loom-ui/loom/pkg/state"
)

// Unknown replaces a content binding whose variable is unset.
const Unknown = "?"

// Source is the read side of a state store.
type Source interface {
	Get(name string) (any, bool)
}

var (
	tokenPattern = regexp.MustCompile(`\$([\p{L}\p{N}_]+)`)
	propPattern  = regexp.MustCompile(`^\$([\p{L}\p{N}_]+)$`)
)

// Render returns the view record of n and, recursively, its children.
func Render(n core.Node, src Source) View {
	v := View{Type: n.Kind().String(), ID: n.ID()}

	switch n := n.(type) {
	case *core.Text:
		content, markup := classify(Interpolate(n.Content, src))
		v.Content = &content
		v.Markup = markup
		v.Props = Props{
			"size":   ResolveProp(n.Size, src),
			"weight": ResolveProp(n.Weight, src),
			"color":  ResolveProp(n.Color, src),
		}
	case *core.Button:
		label := n.Label
		v.Label = &label
		v.Props = Props{"variant": n.Variant}
	case *core.Input:
		value, ok := src.Get(n.Variable)
		if !ok {
			value = state.Placeholder(n.Variable)
		}
		v.Props = Props{
			"label":    nullable(n.Label),
			"value":    JSONSafe(value),
			"variable": n.Variable,
			"type":     n.Type,
		}
	case *core.Chart:
		data, ok := src.Get(n.Variable)
		switch {
		case !ok:
			data = state.Placeholder(n.Variable)
		case data == nil:
			data = []any{}
		}
		var labels any
		if n.Labels != nil {
			labels = n.Labels
		}
		v.Props = Props{
			"type":   n.Type,
			"title":  nullable(n.Title),
			"data":   JSONSafe(data),
			"labels": labels,
		}
	case *core.Container:
		v.Children = make([]View, 0, n.Len())
		n.VisitChildren(func(child core.Node) bool {
			v.Children = append(v.Children, Render(child, src))
			return true
		})
	}
	return v
}

// Interpolate replaces every binding token in content with the string form
// of its bound value, or with Unknown when the variable is unset.
func Interpolate(content string, src Source) string {
	if !strings.Contains(content, state.Sigil) {
		return content
	}
	return tokenPattern.ReplaceAllStringFunc(content, func(token string) string {
		v, ok := src.Get(token[len(state.Sigil):])
		if !ok {
			return Unknown
		}
		return Stringify(v)
	})
}

// ResolveProp resolves a style property. A value that is exactly one binding
// token is replaced wholesale by the bound value, or by the token itself when
// the variable is unset. Other values pass through verbatim, and the empty
// string resolves to nil.
func ResolveProp(value string, src Source) any {
	if value == "" {
		return nil
	}
	m := propPattern.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	if v, ok := src.Get(m[1]); ok {
		return JSONSafe(v)
	}
	return state.Placeholder(m[1])
}

// Stringify formats a bound value for embedding in text.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

// classify applies the markup convention to interpolated content.
func classify(content string) (string, Markup) {
	switch {
	case content == "---":
		return "", MarkupSeparator
	case strings.HasPrefix(content, "## "):
		return strings.TrimPrefix(content, "## "), MarkupSubheading
	case strings.HasPrefix(content, "# "):
		return strings.TrimPrefix(content, "# "), MarkupHeading
	default:
		return content, MarkupPlain
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// JSONSafe rewrites non-finite floats, alone or inside slices, arrays and
// maps, to SafeFloat. Values without such floats are returned unchanged.
func JSONSafe(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return SafeFloat(f)
		}
		return v
	case float32:
		if g := float64(f); math.IsInf(g, 0) || math.IsNaN(g) {
			return SafeFloat(g)
		}
		return v
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		if !mapHasNonFinite(rv) {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = JSONSafe(iter.Value().Interface())
		}
		return out
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return v
	}
	if !hasNonFinite(rv) {
		return v
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = JSONSafe(rv.Index(i).Interface())
	}
	return out
}

func mapHasNonFinite(rv reflect.Value) bool {
	iter := rv.MapRange()
	for iter.Next() {
		if nonFinite(iter.Value()) {
			return true
		}
	}
	return false
}

func hasNonFinite(rv reflect.Value) bool {
	for i := 0; i < rv.Len(); i++ {
		if nonFinite(rv.Index(i)) {
			return true
		}
	}
	return false
}

func nonFinite(e reflect.Value) bool {
	if e.Kind() == reflect.Interface {
		if e.IsNil() {
			return false
		}
		e = e.Elem()
	}
	switch e.Kind() {
	case reflect.Float32, reflect.Float64:
		f := e.Float()
		return math.IsInf(f, 0) || math.IsNaN(f)
	case reflect.Slice, reflect.Array:
		return hasNonFinite(e)
	case reflect.Map:
		return e.Type().Key().Kind() == reflect.String && mapHasNonFinite(e)
	}
	return false
}
