package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init sets up the process logger. An unknown level falls back to info.
func Init(level, logFile string, console bool) error {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	var writers []io.Writer
	if console {
		writers = append(writers, os.Stderr)
	}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}
	switch len(writers) {
	case 0:
		l.SetOutput(io.Discard)
	case 1:
		l.SetOutput(writers[0])
	default:
		l.SetOutput(io.MultiWriter(writers...))
	}

	log = l
	return nil
}

// Get returns the process logger, creating a default one if Init was never
// called. The logger is the one process-wide value: it carries no loop or
// window state, so components take entries from it instead of being handed one.
func Get() *logrus.Logger {
	if log == nil {
		log = logrus.New()
	}
	return log
}

// Component returns an entry tagged with the emitting component.
func Component(name string) *logrus.Entry {
	return Get().WithField("component", name)
}

// SetOutput redirects the process logger, mostly for tests.
func SetOutput(w io.Writer) { Get().SetOutput(w) }
