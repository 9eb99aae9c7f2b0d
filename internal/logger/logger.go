// Package logger provides leveled, timestamped logging for the sgrenew CLI tool.
//
// Every event of a renewal run is written as a single line to stdout so that
// cron mail or a journal captures the whole run in order:
//
//	2026-10-17 03:00:01.204512: Processing domain: example.com
//	2026-10-17 03:00:01.205771: Cert expiring in less than 29 days: 2026-10-22 11:02:00 +0000 UTC
//	2026-10-17 03:00:01.912003: WARN: ingress rule already present group=sg-123 port=80
//
// # Log Levels
//
// Four log levels are supported, in order of severity:
//   - Debug: Detailed information for debugging
//   - Info: Workflow events (the default threshold)
//   - Warn: Conditions that don't stop the run
//   - Error: Failures of a domain or the whole run
//
// Info lines carry no level tag; the other levels are tagged after the
// timestamp.
//
// # Initialization
//
//	logger.Init(verbose)  // verbose=true enables Debug level
//
// # Structured fields
//
//	logger.ErrorFields("Domain failed", map[string]interface{}{
//	    "domain": "example.com",
//	    "error":  err,
//	})
//
// Fields are appended as sorted key=value pairs.
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// TimestampFormat is the layout of the leading timestamp of every line.
const TimestampFormat = "2006-01-02 15:04:05.000000"

// Level represents a logging severity level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger handles leveled logging with thread-safe output.
type Logger struct {
	level  Level
	output io.Writer
	now    func() time.Time
	mu     sync.Mutex
}

// Global logger instance.
var std = &Logger{
	level:  LevelInfo,
	output: os.Stdout,
	now:    time.Now,
}

// Init initializes the global logger with the specified verbosity.
// When verbose is true, Debug is enabled; otherwise Info and above are shown.
func Init(verbose bool) {
	std.mu.Lock()
	defer std.mu.Unlock()

	if verbose {
		std.level = LevelDebug
	} else {
		std.level = LevelInfo
	}
}

// SetLevel sets the minimum log level for the global logger.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.level = level
}

// SetOutput sets the output destination for the global logger.
// A nil writer restores the default, os.Stdout.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	std.output = w
}

// SetClock replaces the timestamp source. A nil func restores time.Now.
func SetClock(now func() time.Time) {
	std.mu.Lock()
	defer std.mu.Unlock()
	if now == nil {
		now = time.Now
	}
	std.now = now
}

// GetLevel returns the current log level.
func GetLevel() Level {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.level
}

// write emits one line; callers hold l.mu.
func (l *Logger) write(level Level, msg string) {
	timestamp := l.now().Format(TimestampFormat)
	if level == LevelInfo {
		_, _ = fmt.Fprintf(l.output, "%s: %s\n", timestamp, msg)
		return
	}
	_, _ = fmt.Fprintf(l.output, "%s: %s: %s\n", timestamp, level.String(), msg)
}

// log writes a formatted message at the specified level.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	l.write(level, fmt.Sprintf(format, args...))
}

// logFields writes a message with structured key-value fields.
func (l *Logger) logFields(level Level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldParts []string
	for _, k := range keys {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", k, fields[k]))
	}

	if len(fieldParts) > 0 {
		msg = msg + " " + strings.Join(fieldParts, " ")
	}

	l.write(level, msg)
}

// Debug logs a debug message.
// Only shown when verbose mode is enabled.
func Debug(format string, args ...interface{}) {
	std.log(LevelDebug, format, args...)
}

// Info logs a workflow event.
func Info(format string, args ...interface{}) {
	std.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	std.log(LevelWarn, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	std.log(LevelError, format, args...)
}

// DebugFields logs a debug message with structured fields.
func DebugFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelDebug, msg, fields)
}

// InfoFields logs an informational message with structured fields.
func InfoFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelInfo, msg, fields)
}

// WarnFields logs a warning message with structured fields.
func WarnFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelWarn, msg, fields)
}

// ErrorFields logs an error message with structured fields.
func ErrorFields(msg string, fields map[string]interface{}) {
	std.logFields(LevelError, msg, fields)
}

// LogError logs an error with additional context message.
func LogError(err error, msg string) {
	if err == nil {
		return
	}
	std.log(LevelError, "%s: %v", msg, err)
}
