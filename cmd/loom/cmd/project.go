package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/loom-ui/loom/cmd/loom/internal/config"
	"github.com/loom-ui/loom/cmd/loom/internal/demos"
	loomerrors "github.com/loom-ui/loom/pkg/errors"
	"github.com/loom-ui/loom/pkg/logging"
	"github.com/loom-ui/loom/pkg/loom"
)

const defaultDemo = "traffic"

// resolveProject loads the configuration of the --config directory, or of
// the nearest enclosing Go module.
func resolveProject() (*config.Resolved, error) {
	dir := configDir
	if dir == "" {
		root, err := config.FindProjectRoot()
		if err != nil {
			return nil, err
		}
		dir = root
	}
	return config.Resolve(dir)
}

// newLogger builds the process logger and routes reported errors to it.
func newLogger(cfg *config.Resolved) (*logrus.Logger, error) {
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	loomerrors.SetHandler(&loomerrors.LogHandler{
		Logger:  logger,
		Verbose: logger.IsLevelEnabled(logrus.DebugLevel),
	})
	return logger, nil
}

func appOptions(cfg *config.Resolved, logger logrus.FieldLogger) []loom.Option {
	return []loom.Option{
		loom.WithTitle(cfg.Title),
		loom.WithTheme(cfg.Theme),
		loom.WithDebug(cfg.Debug),
		loom.WithLogger(logger),
		loom.WithWSPath(cfg.WSPath),
		loom.WithEventRate(cfg.EventsPerSecond, cfg.EventBurst),
	}
}

func buildDemo(name string, cfg *config.Resolved, logger logrus.FieldLogger) (*loom.App, error) {
	if name == "" {
		name = defaultDemo
	}
	return demos.New(name, appOptions(cfg, logger)...)
}
