package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is a leveled logger on top of slog. A nil *Logger discards everything.
type Logger struct {
	level  LogLevel
	logger *slog.Logger
	closer io.Closer
}

var (
	globalLogger *Logger
	loggerOnce   sync.Once
)

// Options configures NewLogger
type Options struct {
	Level   string
	File    string // empty logs to stderr
	NoColor bool
}

// NewLogger creates a logger writing colored output to stderr, or plain
// output to File when one is given
func NewLogger(opts Options) (*Logger, error) {
	var (
		w       io.Writer = os.Stderr
		closer  io.Closer
		noColor = opts.NoColor
	)

	if opts.File != "" {
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.File, err)
		}
		w, closer, noColor = file, file, true
	}

	l := NewWriterLogger(w, opts.Level, noColor)
	l.closer = closer
	return l, nil
}

// NewWriterLogger creates a logger writing to w
func NewWriterLogger(w io.Writer, levelStr string, noColor bool) *Logger {
	level := parseLogLevel(levelStr)
	handler := tint.NewHandler(w, &tint.Options{
		Level:      level.slogLevel(),
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	})
	return &Logger{level: level, logger: slog.New(handler)}
}

// parseLogLevel parses a log level string
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level returns the configured level
func (l *Logger) Level() LogLevel {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

// With returns a logger that adds the given key/value pairs to every record
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{level: l.level, logger: l.logger.With(args...)}
}

// Slog exposes the underlying slog logger
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(tint.NewHandler(io.Discard, nil))
	}
	return l.logger
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) log(level LogLevel, msg string) {
	if l == nil || level < l.level {
		return
	}
	l.logger.Log(context.Background(), level.slogLevel(), msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) { l.log(LevelDebug, msg) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info message
func (l *Logger) Info(msg string) { l.log(LevelInfo, msg) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) { l.log(LevelWarn, msg) }

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message
func (l *Logger) Error(msg string) { l.log(LevelError, msg) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// InitLogger initializes the global logger instance. Only the first call has
// an effect.
func InitLogger(opts Options) error {
	var err error
	loggerOnce.Do(func() {
		globalLogger, err = NewLogger(opts)
	})
	return err
}

// GetLogger returns the global logger, nil before InitLogger
func GetLogger() *Logger {
	return globalLogger
}

// Global convenience functions for logging
func LogInfof(format string, args ...interface{}) {
	globalLogger.Infof(format, args...)
}

func LogDebugf(format string, args ...interface{}) {
	globalLogger.Debugf(format, args...)
}

func LogWarnf(format string, args ...interface{}) {
	globalLogger.Warnf(format, args...)
}

func LogErrorf(format string, args ...interface{}) {
	globalLogger.Errorf(format, args...)
}
