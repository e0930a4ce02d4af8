// Package logging builds the structured logger the CLI and the world
// walker attach per-region and per-chunk fields to.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a logrus logger writing to stderr. level is one of
// logrus's level names ("debug", "info", "warn", "error"); an unknown
// or empty level falls back to "info".
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
