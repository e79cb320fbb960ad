package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New returns a logger configured for the given level. An unknown level
// falls back to info rather than failing engine startup.
func New(level string) *logrus.Logger {
	log := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	return log
}

// Discard returns a logger that drops everything. Handy in tests where the
// debug stream would drown the output.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
