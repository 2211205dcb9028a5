// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the service's structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// New returns a logger writing to stderr. Production defaults to JSON at
// info level; other environments default to text at debug level. Explicit
// cfg values override both defaults.
func New(env types.Environment, cfg types.LoggingConfig) (*logrus.Logger, error) {
	return NewWithWriter(os.Stderr, env, cfg)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, env types.Environment, cfg types.LoggingConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.Out = w

	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "text"
		if env == types.EnvProduction {
			format = "json"
		}
	}
	switch format {
	case "json":
		l.Formatter = &logrus.JSONFormatter{}
	case "text":
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	level := logrus.DebugLevel
	if env == types.EnvProduction {
		level = logrus.InfoLevel
	}
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	l.Level = level

	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
