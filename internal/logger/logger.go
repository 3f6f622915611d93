// Package logger holds the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the global logger. It writes warnings to stderr until Init runs.
var Log = newLogger(os.Stderr, logrus.WarnLevel)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetLevel(level)
	l.SetOutput(out)
	return l
}

// Init configures the global logger. Unknown levels fall back to info.
// Logs go to stderr, and also to filePath when set, so stdout stays free
// for rendered reports. The returned closer releases the log file.
func Init(levelStr string, filePath string) (io.Closer, error) {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	writers := []io.Writer{os.Stderr}
	var file *os.File
	if filePath != "" {
		file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, file)
	}

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	Log.SetLevel(level)
	Log.SetOutput(io.MultiWriter(writers...))

	if file == nil {
		return nopCloser{}, nil
	}
	return file, nil
}

// SetOutput redirects the global logger, mainly for tests
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
