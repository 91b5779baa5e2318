// Package logging builds the logrus loggers used by the Loom server and CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Output formats accepted by Options.Format.
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures New.
type Options struct {
	// Level is a logrus level name. Empty means info.
	Level string
	// Format is auto, text or json. Auto picks text on a terminal and json
	// otherwise.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger configured from opts.
func New(opts Options) (*logrus.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)

	switch format := strings.ToLower(opts.Format); format {
	case "", FormatAuto:
		if isTerminal(out) {
			logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		} else {
			logger.SetFormatter(&logrus.JSONFormatter{})
		}
	case FormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: !isTerminal(out)})
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return logger, nil
}

// ParseLevel parses a level name, treating the empty string as info.
func ParseLevel(name string) (logrus.Level, error) {
	if strings.TrimSpace(name) == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(name)
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
