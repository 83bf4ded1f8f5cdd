// Package xlog is a thin wrapper around the standard log package used for
// the few diagnostic messages that need a timestamp and a subsystem
// prefix. Everything user-facing in cmd/switchxts still goes straight to
// stdout via fmt, matching the teacher project's cmd/nsz texture; this is
// only for library-side diagnostics (provider discovery, container
// decode warnings).
package xlog

import (
	"log"
	"os"
)

// Logger prefixes every line with a subsystem tag.
type Logger struct {
	l *log.Logger
}

// New returns a Logger tagged with name, writing to stderr.
func New(name string) *Logger {
	return &Logger{l: log.New(os.Stderr, "["+name+"] ", log.LstdFlags)}
}

// Infof logs an informational message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.l.Printf(format, args...)
}

// Warnf logs a warning.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.l.Printf("warning: "+format, args...)
}
