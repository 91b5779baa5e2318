package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/theme"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadOptional_Missing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != (Config{}) {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestLoadOptional_Parses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
app:
  title: Dashboard
server:
  addr: 127.0.0.1:9000
  ws_path: /live
  debug: true
  events_per_second: 50
  event_burst: 5
log:
  level: debug
  format: json
theme:
  preset: dark
  primary: tomato
`)
	cfg, err := LoadOptional(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Title != "Dashboard" || cfg.Server.Addr != "127.0.0.1:9000" || !cfg.Server.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Server.EventsPerSecond != 50 || cfg.Server.EventBurst != 5 {
		t.Errorf("unexpected rate settings %+v", cfg.Server)
	}
	if cfg.Theme.Preset != "dark" || cfg.Theme.Palette.Primary != "tomato" {
		t.Errorf("unexpected theme %+v", cfg.Theme)
	}
}

func TestLoadOptional_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "server: [unterminated")
	if _, err := LoadOptional(dir); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApply_Defaults(t *testing.T) {
	res, err := (&Config{}).Apply(nil, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != DefaultTitle || res.Addr != DefaultAddr || res.WSPath != DefaultWSPath {
		t.Errorf("unexpected defaults %+v", res)
	}
	if res.LogLevel != "info" || res.LogFormat != "auto" {
		t.Errorf("unexpected log defaults %q %q", res.LogLevel, res.LogFormat)
	}
	if res.Theme != theme.Light() {
		t.Errorf("expected light theme, got %+v", res.Theme)
	}
}

func TestApply_TitleFromModulePath(t *testing.T) {
	tests := []struct {
		module string
		want   string
	}{
		{"example.com/acme/dashboard", "dashboard"},
		{"example.com/acme/dashboard/v2", "dashboard"},
		{"myapp", "myapp"},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "go.mod", "module "+tt.module+"\n\ngo 1.24\n")
			res, err := (&Config{}).Apply(nil, dir)
			if err != nil {
				t.Fatal(err)
			}
			if res.ModulePath != tt.module {
				t.Errorf("ModulePath = %q, want %q", res.ModulePath, tt.module)
			}
			if res.Title != tt.want {
				t.Errorf("Title = %q, want %q", res.Title, tt.want)
			}
		})
	}
}

func TestApply_EnvOverrides(t *testing.T) {
	cfg := &Config{
		App:    AppConfig{Title: "File"},
		Server: ServerConfig{Addr: ":1", Debug: true, EventsPerSecond: 5},
	}
	env := &Env{
		Title:           "Env",
		Addr:            ":2",
		Debug:           "false",
		EventsPerSecond: 20,
		LogLevel:        "warn",
		LogFormat:       "text",
		Theme:           "cyberpunk",
	}
	res, err := cfg.Apply(env, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "Env" || res.Addr != ":2" || res.Debug || res.EventsPerSecond != 20 {
		t.Errorf("env did not override: %+v", res)
	}
	if res.LogLevel != "warn" || res.LogFormat != "text" {
		t.Errorf("unexpected log settings %q %q", res.LogLevel, res.LogFormat)
	}
	if res.Theme != theme.Cyberpunk() {
		t.Errorf("expected cyberpunk theme, got %+v", res.Theme)
	}
}

func TestApply_ThemeLayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "brand.yaml", "primary: '#F00'\nfont: Inter\n")
	cfg := &Config{Theme: ThemeConfig{
		Preset:  "dark",
		File:    "brand.yaml",
		Palette: theme.Theme{Font: "Georgia", Border: "navy"},
	}}
	res, err := cfg.Apply(nil, dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.Theme.Primary != "#ff0000" {
		t.Errorf("Primary = %q, want #ff0000 from the file", res.Theme.Primary)
	}
	if res.Theme.Font != "Georgia" {
		t.Errorf("Font = %q, inline value should win", res.Theme.Font)
	}
	if res.Theme.Border != "#000080" {
		t.Errorf("Border = %q, want #000080", res.Theme.Border)
	}
	if res.Theme.Background != theme.Dark().Background {
		t.Errorf("Background = %q, want the dark preset", res.Theme.Background)
	}
}

func TestApply_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		env  *Env
	}{
		{"ws path", Config{Server: ServerConfig{WSPath: "ws"}}, nil},
		{"negative rate", Config{Server: ServerConfig{EventsPerSecond: -1}}, nil},
		{"negative burst", Config{Server: ServerConfig{EventBurst: -2}}, nil},
		{"log level", Config{Log: LogConfig{Level: "loud"}}, nil},
		{"log format", Config{Log: LogConfig{Format: "xml"}}, nil},
		{"preset", Config{Theme: ThemeConfig{Preset: "neon"}}, nil},
		{"colour", Config{Theme: ThemeConfig{Palette: theme.Theme{Text: "#12"}}}, nil},
		{"theme file", Config{Theme: ThemeConfig{File: "missing.yaml"}}, nil},
		{"debug env", Config{}, &Env{Debug: "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Apply(tt.env, t.TempDir()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolve_DotEnvAndFile(t *testing.T) {
	os.Unsetenv("LOOM_TITLE")
	t.Cleanup(func() { os.Unsetenv("LOOM_TITLE") })
	t.Setenv("LOOM_ADDR", ":7070")

	dir := t.TempDir()
	writeFile(t, dir, FileName, "app:\n  title: FromFile\nserver:\n  addr: ':1'\n")
	writeFile(t, dir, ".env", "LOOM_TITLE=FromDotEnv\nLOOM_ADDR=:9999\n")

	res, err := Resolve(dir)
	if err != nil {
		t.Fatal(err)
	}
	if res.Title != "FromDotEnv" {
		t.Errorf("Title = %q, want FromDotEnv", res.Title)
	}
	// Variables already in the environment win over .env.
	if res.Addr != ":7070" {
		t.Errorf("Addr = %q, want :7070", res.Addr)
	}
}

func TestResolve_ErrorKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "server:\n  ws_path: nope\n")

	_, err := Resolve(dir)
	var le *loomerrors.LoomError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LoomError, got %v", err)
	}
	if le.Kind != loomerrors.KindConfig {
		t.Errorf("Kind = %v, want config", le.Kind)
	}
}
