// Package logging builds the process logger: an optional console handler
// plus a rotating main log and a warn-and-above errors log on disk.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/syntrixbase/itemdeck/internal/config"
)

const (
	MainLogFile  = "itemdeck.log"
	ErrorLogFile = "errors.log"
)

// Logger is a slog.Logger that owns its rotating log files.
type Logger struct {
	*slog.Logger
	files []*lumberjack.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	console io.Writer
}

// WithConsole redirects console output, which defaults to stdout.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// New creates a logger for cfg. The caller must Close it to release the
// log files.
func New(cfg config.LoggingConfig, opts ...Option) (*Logger, error) {
	o := options{console: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Logger{}
	var handlers []slog.Handler

	if cfg.Console.Enabled {
		handlers = append(handlers, createHandler(o.console, cfg.Console.Format, parseLevel(cfg.Console.Level)))
	}

	if cfg.File.Enabled {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		mainFile := l.openFile(cfg, MainLogFile)
		handlers = append(handlers, createHandler(mainFile, cfg.File.Format, parseLevel(cfg.File.Level)))

		// warn and above are duplicated into their own file
		errorFile := l.openFile(cfg, ErrorLogFile)
		handlers = append(handlers, NewLevelFilter(createHandler(errorFile, cfg.File.Format, slog.LevelWarn), slog.LevelWarn))
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, nil)
	case 1:
		handler = handlers[0]
	default:
		handler = NewMultiHandler(handlers...)
	}
	l.Logger = slog.New(handler)
	return l, nil
}

// Initialize creates a logger and installs it as the slog default.
func Initialize(cfg config.LoggingConfig, opts ...Option) (*Logger, error) {
	l, err := New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(l.Logger)

	l.Info("Logging initialized",
		"level", cfg.Level,
		"format", cfg.Format,
		"dir", cfg.Dir,
		"console_enabled", cfg.Console.Enabled,
		"file_enabled", cfg.File.Enabled,
	)
	return l, nil
}

// Close flushes and closes every log file.
func (l *Logger) Close() error {
	var errs []error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", f.Filename, err))
		}
	}
	l.files = nil
	return errors.Join(errs...)
}

func (l *Logger) openFile(cfg config.LoggingConfig, name string) *lumberjack.Logger {
	f := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    cfg.Rotation.MaxSize,
		MaxBackups: cfg.Rotation.MaxBackups,
		MaxAge:     cfg.Rotation.MaxAge,
		Compress:   cfg.Rotation.Compress,
	}
	l.files = append(l.files, f)
	return f
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func createHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
