// Package logx provides the compiler's diagnostic logger: the Go rendering
// of the Python source's MyLogger, which tags every message with the input
// line number currently being processed (spec §7).
package logx

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// FatalError is returned by Logger.Error. Session code propagates it up to
// Compile, which aborts the fold (spec §7: "error ... Immediately abort
// the fold").
type FatalError struct {
	Line int
	Msg  string
}

func (e *FatalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

// LineSource supplies the line number to attach to log messages; satisfied
// by *reader.Reader.
type LineSource interface {
	CurrentLine() int
}

// Logger wraps logrus with line-number context, matching the three
// severity bands in spec §7 (warning, info, error).
type Logger struct {
	entry *logrus.Entry
	src   LineSource
}

// New creates a Logger that reports diagnostics to stderr. debug controls
// the logrus level (Debug vs Info).
func New(src LineSource, debug bool) *Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{entry: logrus.NewEntry(l), src: src}
}

func (l *Logger) withLine() *logrus.Entry {
	if l.src == nil {
		return l.entry
	}
	return l.entry.WithField("line", l.src.CurrentLine())
}

// Debug logs a debug-level diagnostic. Used for state-machine transitions
// (the Python source's logger.debug("Entering state ...")).
func (l *Logger) Debug(format string, args ...interface{}) {
	l.withLine().Debugf(format, args...)
}

// Info logs an info-level diagnostic: attribution detail, non-fatal but
// notable (spec §7 "info").
func (l *Logger) Info(format string, args ...interface{}) {
	l.withLine().Infof(format, args...)
}

// Warning logs a recoverable divergence (spec §7 "warning"). The fold
// continues.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.withLine().Warnf(format, args...)
}

// Error logs an invariant violation and returns a *FatalError for the
// caller to propagate (spec §7 "error"). Unlike the Python source, this
// does not raise/panic: Go callers return the error explicitly so every
// abort path is visible in the function signature.
func (l *Logger) Error(format string, args ...interface{}) *FatalError {
	msg := fmt.Sprintf(format, args...)
	l.withLine().Error(msg)
	line := 0
	if l.src != nil {
		line = l.src.CurrentLine()
	}
	return &FatalError{Line: line, Msg: msg}
}
