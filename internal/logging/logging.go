// ABOUTME: Process-wide logrus setup shared by every binary
// ABOUTME: Always logs to a file and mirrors to stdout when no TUI owns the terminal
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options selects log destinations and verbosity
type Options struct {
	// File is appended to; empty disables file logging
	File string
	// Console mirrors log lines to stdout
	Console bool
	// Debug lowers the level to debug
	Debug bool
}

// Setup configures the standard logrus logger. The returned closer releases
// the log file and is safe to call when no file was opened.
func Setup(opts Options) (io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}
	if opts.Console {
		writers = append(writers, os.Stdout)
	}

	switch len(writers) {
	case 0:
		logrus.SetOutput(io.Discard)
	case 1:
		logrus.SetOutput(writers[0])
	default:
		logrus.SetOutput(io.MultiWriter(writers...))
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
		DisableColors:   !opts.Console,
	})

	level := logrus.InfoLevel
	if opts.Debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
