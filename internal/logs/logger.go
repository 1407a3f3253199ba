// Package logs configures the application logrus logger.
package logs

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Options selects level, format and an optional log file prefix.
type Options struct {
	Level  string // trace|debug|info|warning|error|fatal
	Format string // text|json
	File   string
}

// New builds a logger from opts and installs it as the logrus standard logger.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.StandardLogger()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		l.SetOutput(os.Stdout)
		return l, nil
	}
	name := fmt.Sprintf("%s_%s.log", opts.File, time.Now().Format("2006-01-02_15-04-05"))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	l.SetOutput(io.MultiWriter(file, os.Stdout))
	return l, nil
}
