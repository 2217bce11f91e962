// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog sets up the process logger and the console output.
package conlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
)

// Config is the [logging] section of the configuration.
type Config struct {
	Logfile string
	MaxSize int    `toml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age"`  // days
	Level   string // debug, info, warn or error
	Format  string // text or json
}

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects Printf.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Printf writes to the console, not to the log.
func Printf(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(out, format, v...)
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", s)
}

// ParseFormat returns "text" or "json".
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(s); f {
	case "", "text":
		return "text", nil
	case "json":
		return f, nil
	}
	return "", errors.Errorf("unknown log format %q", s)
}

// New builds a logger for c. Without a log file it writes to w, otherwise to
// a file rotated by size and age. The returned closer releases the file.
func New(c *Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	if c == nil {
		c = &Config{}
	}
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, nil, err
	}
	var closer io.Closer = nopCloser{}
	if c.Logfile != "" {
		l := &lumberjack.Logger{
			Filename: c.Logfile,
			MaxSize:  c.MaxSize,
			MaxAge:   c.MaxAge,
		}
		w, closer = l, l
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h), closer, nil
}

// Setup is New followed by installing the logger as the slog default.
func Setup(c *Config, w io.Writer) (io.Closer, error) {
	l, closer, err := New(c, w)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(l)
	return closer, nil
}
