package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// LogLevel orders diagnostic messages by severity. LevelOff silences all of
// them.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelOff
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "OFF"}

func (l LogLevel) String() string {
	if l < LevelTrace || l > LevelOff {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLogLevel parses the value of BIFF_LOG. The empty string selects warn.
func ParseLogLevel(levelStr string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "":
		return LevelWarn, nil
	case "off":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelOff, errors.Errorf("unrecognized log level `%s`", levelStr)
	}
}

// Field is a key-value pair attached to a message.
type Field struct {
	Key   string
	Value interface{}
}

// LogFormat selects how entries are rendered (BIFF_LOG_FORMAT).
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// LogEntry is one message as handed to an Output.
type LogEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"msg"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Output receives every entry a Logger emits.
type Output interface {
	Write(entry LogEntry) error
}

// Logger fans entries at or above its level out to its outputs. A Logger is
// immutable once built, so it can be shared between goroutines; outputs do
// their own locking.
type Logger struct {
	level   LogLevel
	outputs []Output
	fields  []Field
}

func NewLogger(level LogLevel, outputs ...Output) *Logger {
	return &Logger{level: level, outputs: outputs}
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{level: l.level, outputs: l.outputs, fields: merged}
}

// Enabled reports whether messages at level are emitted.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level != LevelOff && level >= l.level
}

func (l *Logger) log(level LogLevel, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}
	entry := LogEntry{Time: time.Now(), Level: level.String(), Message: msg}
	if n := len(l.fields) + len(fields); n > 0 {
		entry.Fields = make(map[string]interface{}, n)
		for _, f := range l.fields {
			entry.Fields[f.Key] = f.Value
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}
	for _, out := range l.outputs {
		// Nowhere left to report a failing diagnostic stream.
		_ = out.Write(entry)
	}
}

func (l *Logger) Trace(msg string, fields ...Field) { l.log(LevelTrace, msg, fields) }
func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *Logger) Tracef(format string, args ...interface{}) {
	l.logf(LevelTrace, format, args)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args)
}

// logf skips formatting when the level is disabled; trace messages are
// produced per line.
func (l *Logger) logf(level LogLevel, format string, args []interface{}) {
	if l.Enabled(level) {
		l.log(level, fmt.Sprintf(format, args...), nil)
	}
}
