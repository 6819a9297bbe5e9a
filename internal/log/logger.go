// Package log provides console output mirrored to a structured log file.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FileName is the log file created inside the log directory.
const FileName = "idapm.log"

// Logger writes user-facing output to the console and records it, together
// with operational events, as JSON lines in a log file.
type Logger struct {
	file   *os.File
	out    io.Writer
	errOut io.Writer
	zl     zerolog.Logger
}

// New creates a logger appending to <logDir>/idapm.log at the given level
// (debug, info, warn, error). An empty level means info.
func New(logDir, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, FileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		file:   file,
		out:    os.Stdout,
		errOut: os.Stderr,
		zl:     zerolog.New(file).Level(lvl).With().Timestamp().Logger(),
	}, nil
}

// ParseLevel maps a config level name onto zerolog.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

// Printf writes a formatted message to the console and the log file.
func (l *Logger) Printf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprint(l.out, msg)
	l.record(zerolog.InfoLevel, msg)
}

// Println writes a message to the console and the log file with a newline.
func (l *Logger) Println(args ...interface{}) {
	msg := fmt.Sprintln(args...)
	_, _ = fmt.Fprint(l.out, msg)
	l.record(zerolog.InfoLevel, msg)
}

// Errorf writes a formatted error message to stderr and the log file.
func (l *Logger) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	_, _ = fmt.Fprint(l.errOut, msg)
	l.record(zerolog.ErrorLevel, msg)
}

func (l *Logger) record(level zerolog.Level, msg string) {
	msg = strings.TrimRight(msg, "\n")
	if msg == "" {
		return
	}
	l.zl.WithLevel(level).Str("source", "console").Msg(msg)
}

// Structured returns the structured file logger.
func (l *Logger) Structured() *zerolog.Logger {
	return &l.zl
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Global logger instance
var globalLogger *Logger

var nop = zerolog.Nop()

// Init initializes the global logger.
func Init(logDir, level string) error {
	logger, err := New(logDir, level)
	if err != nil {
		return err
	}
	globalLogger = logger
	return nil
}

// L returns the global structured logger, or a disabled one before Init.
func L() *zerolog.Logger {
	if globalLogger != nil {
		return globalLogger.Structured()
	}
	return &nop
}

// Printf uses the global logger to print formatted output.
func Printf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Printf(format, args...)
	} else {
		fmt.Printf(format, args...)
	}
}

// Println uses the global logger to print output with newline.
func Println(args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Println(args...)
	} else {
		fmt.Println(args...)
	}
}

// Errorf uses the global logger to print formatted error output.
func Errorf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Errorf(format, args...)
	} else {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// Close closes the global logger.
func Close() error {
	if globalLogger != nil {
		err := globalLogger.Close()
		globalLogger = nil
		return err
	}
	return nil
}
