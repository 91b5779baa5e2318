// Package htmlview renders view records to HTML on the server, following the
// same markup rules as the browser client. It serves the first paint before
// the websocket connects and the "render --format html" command.
package htmlview

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/loom-ui/loom/pkg/render"
)

// Class names shared with the browser client.
const (
	ClassHeading    = "text-3xl font-bold mb-4"
	ClassSubheading = "text-2xl font-bold mb-2"
	ClassSeparator  = "my-4 border-gray-300 loom-separator"
	ClassText       = "loom-text"
	ClassButton     = "px-4 py-2 rounded transition mr-2 loom-button"
	ClassRow        = "flex flex-row gap-4 items-center mb-2"
	ClassColumn     = "flex flex-col gap-2"
	ClassCard       = "p-6 shadow-lg rounded-xl border mb-4 loom-card"
	ClassField      = "flex flex-col gap-1 mb-2 loom-field"
	ClassInput      = "px-3 py-2 border rounded loom-input"
	ClassChart      = "mb-4 loom-chart"
)

// Chart canvas size in SVG user units.
const (
	chartWidth  = 300
	chartHeight = 150
)

// Render writes the HTML fragment for v.
func Render(w io.Writer, v render.View) error {
	return html.Render(w, Node(v))
}

// String returns the HTML fragment for v.
func String(v render.View) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, v); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Node builds the HTML node tree for v.
func Node(v render.View) *html.Node {
	switch v.Type {
	case "Text":
		return textNode(v)
	case "Button":
		return buttonNode(v)
	case "Input":
		return inputNode(v)
	case "Chart":
		return chartNode(v)
	case "Row", "Column", "Card":
		n := element(atom.Div, containerClass(v.Type), idAttr(v))
		for _, child := range v.Children {
			n.AppendChild(Node(child))
		}
		return n
	default:
		// Unknown records render as an empty placeholder so the client and
		// server markup stay aligned.
		return element(atom.Div, "loom-unknown", idAttr(v), attr("data-type", v.Type))
	}
}

func containerClass(typ string) string {
	switch typ {
	case "Row":
		return ClassRow
	case "Card":
		return ClassCard
	default:
		return ClassColumn
	}
}

func textNode(v render.View) *html.Node {
	content := ""
	if v.Content != nil {
		content = *v.Content
	}

	var n *html.Node
	switch v.Markup {
	case render.MarkupSeparator:
		return element(atom.Hr, ClassSeparator, idAttr(v))
	case render.MarkupHeading:
		n = element(atom.H1, ClassHeading, idAttr(v))
	case render.MarkupSubheading:
		n = element(atom.H2, ClassSubheading, idAttr(v))
	default:
		n = element(atom.Div, ClassText, idAttr(v))
	}
	if style := textStyle(v.Props); style != "" {
		n.Attr = append(n.Attr, attr("style", style))
	}
	n.AppendChild(textChild(content))
	return n
}

// textStyle turns the size, weight and color props into an inline style.
// Numeric sizes are pixels.
func textStyle(p render.Props) string {
	var decls []string
	if size := p["size"]; size != nil {
		s := render.Stringify(size)
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			s += "px"
		}
		decls = append(decls, "font-size: "+cssValue(s))
	}
	if weight := p["weight"]; weight != nil {
		decls = append(decls, "font-weight: "+cssValue(render.Stringify(weight)))
	}
	if color := p["color"]; color != nil {
		decls = append(decls, "color: "+cssValue(render.Stringify(color)))
	}
	return strings.Join(decls, "; ")
}

func buttonNode(v render.View) *html.Node {
	variant := render.Stringify(v.Props["variant"])
	if variant == "" {
		variant = "primary"
	}
	n := element(atom.Button, ClassButton+" loom-"+classToken(variant),
		attr("type", "button"), idAttr(v), attr("data-action", "click"))
	if v.Label != nil {
		n.AppendChild(textChild(*v.Label))
	}
	return n
}

func inputNode(v render.View) *html.Node {
	typ := render.Stringify(v.Props["type"])
	if typ == "" {
		typ = "text"
	}
	in := element(atom.Input, ClassInput,
		attr("type", typ),
		idAttr(v),
		attr("data-variable", render.Stringify(v.Props["variable"])),
		attr("value", render.Stringify(v.Props["value"])),
	)

	field := element(atom.Label, ClassField)
	if label := v.Props["label"]; label != nil {
		span := element(atom.Span, "text-sm font-medium")
		span.AppendChild(textChild(render.Stringify(label)))
		field.AppendChild(span)
	}
	field.AppendChild(in)
	return field
}

func chartNode(v render.View) *html.Node {
	typ := render.Stringify(v.Props["type"])
	fig := element(atom.Figure, ClassChart, idAttr(v), attr("data-chart-type", typ))
	if title := v.Props["title"]; title != nil {
		caption := element(atom.Figcaption, "font-bold mb-2")
		caption.AppendChild(textChild(render.Stringify(title)))
		fig.AppendChild(caption)
	}

	values := Numbers(v.Props["data"])
	labels := stringsOf(v.Props["labels"])
	svg := &html.Node{
		Type:      html.ElementNode,
		Data:      "svg",
		DataAtom:  atom.Svg,
		Namespace: "svg",
		Attr: []html.Attribute{
			attr("viewBox", fmt.Sprintf("0 0 %d %d", chartWidth, chartHeight+20)),
			attr("class", "w-full"),
			attr("role", "img"),
		},
	}
	switch typ {
	case "line":
		drawLine(svg, values)
	default:
		drawBars(svg, values)
	}
	drawLabels(svg, labels, len(values))
	fig.AppendChild(svg)
	return fig
}

func drawBars(svg *html.Node, values []float64) {
	if len(values) == 0 {
		return
	}
	top := maxOf(values)
	slot := float64(chartWidth) / float64(len(values))
	for i, val := range values {
		h := val / top * chartHeight
		svg.AppendChild(svgElement("rect",
			attr("x", num(float64(i)*slot+slot*0.1)),
			attr("y", num(chartHeight-h)),
			attr("width", num(slot*0.8)),
			attr("height", num(h)),
			attr("class", "loom-chart-bar"),
		))
	}
}

func drawLine(svg *html.Node, values []float64) {
	if len(values) == 0 {
		return
	}
	top := maxOf(values)
	step := 0.0
	if len(values) > 1 {
		step = float64(chartWidth) / float64(len(values)-1)
	}
	points := make([]string, len(values))
	for i, val := range values {
		points[i] = num(float64(i)*step) + "," + num(chartHeight-val/top*chartHeight)
	}
	svg.AppendChild(svgElement("polyline",
		attr("points", strings.Join(points, " ")),
		attr("fill", "none"),
		attr("class", "loom-chart-line"),
	))
}

func drawLabels(svg *html.Node, labels []string, count int) {
	if count == 0 {
		return
	}
	slot := float64(chartWidth) / float64(count)
	for i, label := range labels {
		if i >= count {
			break
		}
		t := svgElement("text",
			attr("x", num(float64(i)*slot+slot/2)),
			attr("y", num(chartHeight+15)),
			attr("text-anchor", "middle"),
			attr("font-size", "10"),
		)
		t.AppendChild(textChild(label))
		svg.AppendChild(t)
	}
}

// Numbers converts chart data to float64 values. Non-numeric and non-finite
// entries count as zero; negative values are clamped to zero.
func Numbers(data any) []float64 {
	rv := reflect.ValueOf(data)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil
	}
	out := make([]float64, rv.Len())
	for i := range out {
		e := rv.Index(i)
		if e.Kind() == reflect.Interface && !e.IsNil() {
			e = e.Elem()
		}
		var f float64
		switch e.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(e.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(e.Uint())
		case reflect.Float32, reflect.Float64:
			f = e.Float()
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			f = 0
		}
		out[i] = f
	}
	return out
}

func stringsOf(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = render.Stringify(s)
		}
		return out
	default:
		return nil
	}
}

// maxOf returns the largest value, or 1 when all are zero.
func maxOf(values []float64) float64 {
	top := 0.0
	for _, v := range values {
		top = max(top, v)
	}
	if top == 0 {
		return 1
	}
	return top
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func element(a atom.Atom, class string, attrs ...html.Attribute) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if class != "" {
		n.Attr = append(n.Attr, attr("class", class))
	}
	n.Attr = append(n.Attr, attrs...)
	return n
}

func svgElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag)), Namespace: "svg", Attr: attrs}
}

func textChild(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func idAttr(v render.View) html.Attribute {
	return attr("data-id", v.ID.String())
}

// classToken keeps letters, digits and dashes so a variant cannot inject
// extra class names.
func classToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return -1
	}, s)
}

func cssValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"':
			return -1
		}
		return r
	}, s)
}
