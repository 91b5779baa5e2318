// Package theme defines the colour and typography palette applied to the
// client page.
package theme

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Theme is a page palette. Colours accept "#rgb", "#rrggbb" or a CSS colour
// name; Normalize converts all of them to "#rrggbb".
type Theme struct {
	Background   string `yaml:"background,omitempty" json:"background"`
	Surface      string `yaml:"surface,omitempty" json:"surface"`
	Text         string `yaml:"text,omitempty" json:"text"`
	Primary      string `yaml:"primary,omitempty" json:"primary"`
	PrimaryHover string `yaml:"primary_hover,omitempty" json:"primary_hover"`
	Border       string `yaml:"border,omitempty" json:"border"`
	Font         string `yaml:"font,omitempty" json:"font"`
	Radius       string `yaml:"radius,omitempty" json:"radius"`
}

// Light is the default palette.
func Light() Theme {
	return Theme{
		Background:   "#f3f4f6",
		Surface:      "#ffffff",
		Text:         "#374151",
		Primary:      "#2563eb",
		PrimaryHover: "#1d4ed8",
		Border:       "#f3f4f6",
		Font:         "ui-sans-serif, system-ui, sans-serif",
		Radius:       "0.75rem",
	}
}

// Dark is a dark palette with the default accent.
func Dark() Theme {
	return Theme{
		Background:   "#111827",
		Surface:      "#1f2937",
		Text:         "#e5e7eb",
		Primary:      "#3b82f6",
		PrimaryHover: "#2563eb",
		Border:       "#374151",
		Font:         "ui-sans-serif, system-ui, sans-serif",
		Radius:       "0.75rem",
	}
}

// Cyberpunk is a terminal-style palette with sharp edges.
func Cyberpunk() Theme {
	return Theme{
		Background:   "#000000",
		Surface:      "#121212",
		Text:         "#00ff41",
		Primary:      "#d900ff",
		PrimaryHover: "#b200d1",
		Border:       "#333333",
		Font:         "Courier New, monospace",
		Radius:       "0px",
	}
}

var presets = map[string]func() Theme{
	"light":     Light,
	"dark":      Dark,
	"cyberpunk": Cyberpunk,
}

// ErrUnknownPreset is returned by Preset for unregistered names.
var ErrUnknownPreset = errors.New("unknown theme preset")

// Preset returns the named palette.
func Preset(name string) (Theme, error) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Theme{}, fmt.Errorf("%w %q (have %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return fn(), nil
}

// PresetNames lists the registered presets in order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a palette from a YAML file. Fields missing from the file are
// left empty; merge the result over a preset to fill them.
func Load(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("read theme: %w", err)
	}
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return t, nil
}

// Merge returns t with every non-empty field of override applied.
func (t Theme) Merge(override Theme) Theme {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&t.Background, override.Background)
	set(&t.Surface, override.Surface)
	set(&t.Text, override.Text)
	set(&t.Primary, override.Primary)
	set(&t.PrimaryHover, override.PrimaryHover)
	set(&t.Border, override.Border)
	set(&t.Font, override.Font)
	set(&t.Radius, override.Radius)
	return t
}

var hexPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Normalize returns t with every colour rewritten as lowercase "#rrggbb".
// Empty colours are left empty.
func (t Theme) Normalize() (Theme, error) {
	for _, c := range t.colours() {
		if *c.value == "" {
			continue
		}
		hex, err := normalizeColour(*c.value)
		if err != nil {
			return Theme{}, fmt.Errorf("theme %s: %w", c.name, err)
		}
		*c.value = hex
	}
	return t, nil
}

// CSSVariables returns the palette as CSS custom property declarations,
// sorted by name, for use inside a :root rule.
func (t Theme) CSSVariables() string {
	vars := map[string]string{
		"--loom-background":    t.Background,
		"--loom-surface":       t.Surface,
		"--loom-text":          t.Text,
		"--loom-primary":       t.Primary,
		"--loom-primary-hover": t.PrimaryHover,
		"--loom-border":        t.Border,
		"--loom-font":          t.Font,
		"--loom-radius":        t.Radius,
	}
	names := make([]string, 0, len(vars))
	for name, v := range vars {
		if v != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(sanitizeCSS(vars[name]))
		sb.WriteString(";\n")
	}
	return sb.String()
}

type colourField struct {
	name  string
	value *string
}

func (t *Theme) colours() []colourField {
	return []colourField{
		{"background", &t.Background},
		{"surface", &t.Surface},
		{"text", &t.Text},
		{"primary", &t.Primary},
		{"primary_hover", &t.PrimaryHover},
		{"border", &t.Border},
	}
}

func normalizeColour(s string) (string, error) {
	s = strings.TrimSpace(s)
	if hexPattern.MatchString(s) {
		s = strings.ToLower(s)
		if len(s) == 4 {
			s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
		}
		return s, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	return "", fmt.Errorf("invalid colour %q", s)
}

// sanitizeCSS strips characters that could close the declaration or rule.
func sanitizeCSS(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>':
			return -1
		}
		return r
	}, v)
}
