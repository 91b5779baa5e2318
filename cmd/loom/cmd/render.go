package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/loom-ui/loom/pkg/htmlview"
	"github.com/loom-ui/loom/pkg/server/client"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Print the initial view of a demo",
		Long: `Render a demo once and print the result without starting a server.

Formats:
  json   The view tree as sent to clients (default)
  html   The server-side HTML fragment of the view tree
  page   The complete HTML document served at "/"

Flags:
  --demo NAME     Demo to render (default: traffic)
  --format FMT    json, html or page`,
		Usage: "loom render [--demo NAME] [--format json|html|page]",
		Run:   runRender,
	})
}

func runRender(args []string) error {
	flags, _, err := parseFlags(args, "demo", "format")
	if err != nil {
		return err
	}

	cfg, err := resolveProject()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	app, err := buildDemo(flags["demo"], cfg, logger)
	if err != nil {
		return err
	}
	view := app.Render()

	switch format := flags["format"]; format {
	case "", "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("encode view: %w", err)
		}
		_, err = fmt.Fprintf(stdout, "%s\n", data)
		return err
	case "html":
		return htmlview.Render(stdout, view)
	case "page":
		page := htmlview.Page{
			Title:    cfg.Title,
			ThemeCSS: cfg.Theme.CSSVariables(),
			Script:   client.Script,
			WSPath:   cfg.WSPath,
		}
		return page.Render(stdout, view)
	default:
		return fmt.Errorf("unknown format %q (use json, html or page)", format)
	}
}
