package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Serve a demo application",
		Long: `Serve one of the bundled demos over HTTP and websockets.

Settings come from loom.yaml in the project directory, then from a .env
file next to it, then from LOOM_* environment variables.

Flags:
  --demo NAME   Demo to serve (default: traffic; see "loom demos")
  --addr ADDR   Listen address (overrides server.addr and LOOM_ADDR)

The server stops cleanly on SIGINT or SIGTERM, closing open sessions.`,
		Usage: "loom serve [--demo NAME] [--addr ADDR]",
		Run:   runServe,
	})
}

func runServe(args []string) error {
	flags, _, err := parseFlags(args, "demo", "addr")
	if err != nil {
		return err
	}

	cfg, err := resolveProject()
	if err != nil {
		return err
	}
	if addr := flags["addr"]; addr != "" {
		cfg.Addr = addr
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	app, err := buildDemo(flags["demo"], cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"addr":  cfg.Addr,
		"demo":  demoName(flags["demo"]),
		"debug": cfg.Debug,
	}).Info("serving")
	return app.ListenAndServe(ctx, cfg.Addr)
}

func demoName(name string) string {
	if name == "" {
		return defaultDemo
	}
	return name
}
