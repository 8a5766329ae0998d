// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

type Config struct {
	// Verbose lowers the console level to Debug.
	Verbose bool
	// Level is the console level when Verbose is unset. Empty means info.
	Level string
	// LogFile, when set, receives every record at Debug as JSON lines.
	LogFile string
	// Console defaults to os.Stderr.
	Console io.Writer
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
// An empty name is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// New returns a logger fanning out to the console and the optional log file.
// The returned close function releases the log file and is never nil.
func New(c Config) (*slog.Logger, func() error, error) {
	console := c.Console
	if console == nil {
		console = os.Stderr
	}
	closeFn := func() error { return nil }
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, closeFn, err
	}
	if c.Verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	}

	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}

// Init builds the logger and installs it as slog.Default.
func Init(c Config) (func() error, error) {
	logger, closeFn, err := New(c)
	if err != nil {
		return closeFn, err
	}
	slog.SetDefault(logger)
	return closeFn, nil
}
