// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config selects the level and output format.
type Config struct {
	Level  string
	Format string
	Debug  bool
}

// New builds a logger writing to stdout.
func New(cfg Config) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

// NewWithOutput builds a logger writing to out. "json" selects the JSON formatter;
// anything else gets the colored text formatter used for local runs.
func NewWithOutput(cfg Config, out io.Writer) *logrus.Logger {
	base := logrus.New()
	base.SetOutput(out)

	if strings.EqualFold(cfg.Format, "json") {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetLevel(ParseLevel(cfg.Level))
	if cfg.Debug {
		base.SetLevel(logrus.DebugLevel)
	}

	return base
}

// ParseLevel maps a level name to a logrus level, defaulting to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithRequest attaches request metadata to an entry.
func WithRequest(logger logrus.FieldLogger, r *http.Request, requestID string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     r.Method,
		"path":       r.URL.Path,
	})
}
