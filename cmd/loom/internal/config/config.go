// Package config resolves the settings of a Loom project from loom.yaml,
// an optional .env file and LOOM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/logging"
	"github.com/loom-ui/loom/pkg/theme"
)

// FileName is the project configuration file looked up by LoadOptional.
const FileName = "loom.yaml"

// Defaults applied by Resolve.
const (
	DefaultAddr   = ":8000"
	DefaultWSPath = "/ws"
	DefaultTitle  = "Loom"
	DefaultPreset = "light"
)

// Config represents the optional loom.yaml configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Theme  ThemeConfig  `yaml:"theme"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Title string `yaml:"title,omitempty"`
}

// ServerConfig contains transport settings.
type ServerConfig struct {
	Addr            string  `yaml:"addr,omitempty"`
	WSPath          string  `yaml:"ws_path,omitempty"`
	Debug           bool    `yaml:"debug,omitempty"`
	EventsPerSecond float64 `yaml:"events_per_second,omitempty"`
	EventBurst      int     `yaml:"event_burst,omitempty"`
}

// LogConfig selects the logger level and output format.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ThemeConfig picks a preset, optionally overlays a palette file and then
// the inline colours.
type ThemeConfig struct {
	Preset  string      `yaml:"preset,omitempty"`
	File    string      `yaml:"file,omitempty"`
	Palette theme.Theme `yaml:",inline"`
}

// Env holds the LOOM_* overrides. Empty fields leave the file value alone.
type Env struct {
	Title           string  `env:"LOOM_TITLE"`
	Addr            string  `env:"LOOM_ADDR"`
	WSPath          string  `env:"LOOM_WS_PATH"`
	Debug           string  `env:"LOOM_DEBUG"`
	EventsPerSecond float64 `env:"LOOM_EVENTS_PER_SECOND"`
	LogLevel        string  `env:"LOOM_LOG_LEVEL"`
	LogFormat       string  `env:"LOOM_LOG_FORMAT"`
	Theme           string  `env:"LOOM_THEME"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root            string
	ModulePath      string
	Title           string
	Addr            string
	WSPath          string
	Debug           bool
	EventsPerSecond float64
	EventBurst      int
	LogLevel        string
	LogFormat       string
	Theme           theme.Theme
}

// LoadOptional reads loom.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// LoadEnv loads dir/.env into the process environment, without replacing
// variables that are already set, and decodes the LOOM_* overrides.
func LoadEnv(dir string) (*Env, error) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	var env Env
	if err := envdecode.Decode(&env); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode LOOM_* environment: %w", err)
	}
	return &env, nil
}

// Resolve loads loom.yaml and the environment for dir, applies defaults and
// validates the result. Failures are *errors.LoomError of kind config.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, configError(err)
	}
	env, err := LoadEnv(dir)
	if err != nil {
		return nil, configError(err)
	}
	res, err := cfg.Apply(env, dir)
	if err != nil {
		return nil, configError(err)
	}
	return res, nil
}

// Apply merges env over cfg, fills defaults and validates.
func (cfg *Config) Apply(env *Env, dir string) (*Resolved, error) {
	res := &Resolved{
		Root:            dir,
		ModulePath:      modulePath(dir),
		Title:           strings.TrimSpace(cfg.App.Title),
		Addr:            cfg.Server.Addr,
		WSPath:          cfg.Server.WSPath,
		Debug:           cfg.Server.Debug,
		EventsPerSecond: cfg.Server.EventsPerSecond,
		EventBurst:      cfg.Server.EventBurst,
		LogLevel:        cfg.Log.Level,
		LogFormat:       cfg.Log.Format,
	}
	preset := cfg.Theme.Preset

	if env != nil {
		override(&res.Title, env.Title)
		override(&res.Addr, env.Addr)
		override(&res.WSPath, env.WSPath)
		override(&res.LogLevel, env.LogLevel)
		override(&res.LogFormat, env.LogFormat)
		override(&preset, env.Theme)
		if env.Debug != "" {
			debug, err := strconv.ParseBool(env.Debug)
			if err != nil {
				return nil, fmt.Errorf("LOOM_DEBUG: %w", err)
			}
			res.Debug = debug
		}
		if env.EventsPerSecond != 0 {
			res.EventsPerSecond = env.EventsPerSecond
		}
	}

	if res.Title == "" {
		res.Title = defaultTitle(res.ModulePath)
	}
	if res.Addr == "" {
		res.Addr = DefaultAddr
	}
	if res.WSPath == "" {
		res.WSPath = DefaultWSPath
	}
	if res.LogLevel == "" {
		res.LogLevel = "info"
	}
	if res.LogFormat == "" {
		res.LogFormat = logging.FormatAuto
	}
	if preset == "" {
		preset = DefaultPreset
	}

	t, err := resolveTheme(preset, cfg.Theme, dir)
	if err != nil {
		return nil, err
	}
	res.Theme = t

	if err := res.validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveTheme(preset string, tc ThemeConfig, dir string) (theme.Theme, error) {
	t, err := theme.Preset(preset)
	if err != nil {
		return theme.Theme{}, err
	}
	if tc.File != "" {
		path := tc.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		file, err := theme.Load(path)
		if err != nil {
			return theme.Theme{}, err
		}
		t = t.Merge(file)
	}
	return t.Merge(tc.Palette).Normalize()
}

func (r *Resolved) validate() error {
	if !strings.HasPrefix(r.WSPath, "/") {
		return fmt.Errorf("server.ws_path must start with '/' (got %q)", r.WSPath)
	}
	if r.EventsPerSecond < 0 {
		return fmt.Errorf("server.events_per_second cannot be negative (got %v)", r.EventsPerSecond)
	}
	if r.EventBurst < 0 {
		return fmt.Errorf("server.event_burst cannot be negative (got %d)", r.EventBurst)
	}
	if _, err := logging.ParseLevel(r.LogLevel); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch r.LogFormat {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("log.format must be auto, text or json (got %q)", r.LogFormat)
	}
	return nil
}

// FindProjectRoot walks up from the current directory to find go.mod. It
// returns the current directory when none is found.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

func override(dst *string, src string) {
	if src = strings.TrimSpace(src); src != "" {
		*dst = src
	}
}

func configError(err error) error {
	return &loomerrors.LoomError{Op: "config.Resolve", Kind: loomerrors.KindConfig, Err: err}
}

// modulePath returns the module path declared in dir/go.mod, or "".
func modulePath(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}

func defaultTitle(modulePath string) string {
	if modulePath == "" {
		return DefaultTitle
	}
	modName, _, ok := module.SplitPathVersion(modulePath)
	if !ok {
		modName = modulePath
	}
	parts := strings.Split(modName, "/")
	if base := parts[len(parts)-1]; base != "" {
		return base
	}
	return DefaultTitle
}
