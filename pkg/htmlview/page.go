package htmlview

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/loom-ui/loom/pkg/render"
)

// TailwindCDN is the stylesheet runtime the page loads for utility classes.
const TailwindCDN = "https://cdn.tailwindcss.com"

// BaseCSS maps the --loom-* theme variables onto the component classes.
const BaseCSS = `body { background: var(--loom-background); color: var(--loom-text); font-family: var(--loom-font); }
.loom-text { color: var(--loom-text); }
.loom-card { background: var(--loom-surface); border-color: var(--loom-border); border-radius: var(--loom-radius); }
.loom-button { border-radius: var(--loom-radius); color: #ffffff; }
.loom-primary { background: var(--loom-primary); }
.loom-primary:hover { background: var(--loom-primary-hover); }
.loom-secondary { background: var(--loom-surface); color: var(--loom-text); border: 1px solid var(--loom-border); }
.loom-danger { background: #dc2626; }
.loom-input { background: var(--loom-surface); color: var(--loom-text); border-color: var(--loom-border); border-radius: var(--loom-radius); }
.loom-separator { border-color: var(--loom-border); }
.loom-chart-bar { fill: var(--loom-primary); }
.loom-chart-line { stroke: var(--loom-primary); stroke-width: 2; }
.loom-chart text { fill: var(--loom-text); }
`

// Page describes the document shell around the rendered view.
type Page struct {
	Title string
	// ThemeCSS holds custom property declarations for the :root rule.
	ThemeCSS string
	// Script is the client program, inlined at the end of the body.
	Script string
	// WSPath is the websocket endpoint the client connects to.
	WSPath string
}

// Render writes the full HTML document with v pre-rendered inside #app.
func (p Page) Render(w io.Writer, v render.View) error {
	return html.Render(w, p.Document(v))
}

// Document builds the document node tree.
func (p Page) Document(v render.View) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "")
	doc.AppendChild(root)

	head := element(atom.Head, "")
	head.AppendChild(element(atom.Meta, "", attr("charset", "utf-8")))
	head.AppendChild(element(atom.Meta, "", attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1")))
	title := element(atom.Title, "")
	title.AppendChild(textChild(p.Title))
	head.AppendChild(title)
	head.AppendChild(element(atom.Script, "", attr("src", TailwindCDN)))
	style := element(atom.Style, "")
	style.AppendChild(textChild(":root {\n" + p.ThemeCSS + "}\n" + BaseCSS))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body, "p-10")
	app := element(atom.Div, "max-w-2xl mx-auto", attr("id", "app"), attr("data-ws", p.WSPath))
	app.AppendChild(Node(v))
	body.AppendChild(app)
	if p.Script != "" {
		script := element(atom.Script, "")
		script.AppendChild(textChild(p.Script))
		body.AppendChild(script)
	}
	root.AppendChild(body)
	return doc
}
