package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"swapbridge/config"
)

// New builds a logger from the log configuration. Output goes to stderr so
// it never interleaves with command output on stdout.
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	return newTo(cfg, os.Stderr)
}

func newTo(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
	}
	logger.SetLevel(parsed)

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format '%s' (expected text or json)", cfg.Format)
	}

	return logger, nil
}
