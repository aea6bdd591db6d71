package util

import (
	"io"
	"sync"
)

var (
	globalLogger *Logger
	loggerMu     sync.RWMutex
)

// InitLogger installs the process-wide logger. Unlike most globals it may be
// called again, since every command invocation re-reads BIFF_LOG.
func InitLogger(level LogLevel, format LogFormat, w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	globalLogger = NewLogger(level, NewConsoleOutput(w, format, IsTerminal(w)))
}

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogEnabled reports whether the global logger emits messages at level.
func LogEnabled(level LogLevel) bool {
	if l := current(); l != nil {
		return l.Enabled(level)
	}
	return false
}

func LogTracef(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Tracef(format, args...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}
