// Package klog is the kernel's logging glue. Ambient, human-facing
// messages flow through a *logrus.Logger the way
// operator-framework-operator-registry logs its own control-plane events;
// the fixed-format lines spec.md §6 promises to scrape
// ("[pid P] PAGEFAULT ...", the fair-scheduler decision dump, ...) go
// through Trace, which writes the literal line to the same logger's output
// sink, without logrus's own field/timestamp decoration corrupting the
// scraped format. The logger's level does not filter Trace/TraceLine
// output; only Info/Warn/Error respect it.
package klog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with the kernel's two logging modes.
type Logger struct {
	l *logrus.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level logrus.Level) *Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &Logger{l: l}
}

// Default is the package-level logger used when no Logger is threaded
// through explicitly (boot messages, package-level helpers).
var Default = New(os.Stdout, logrus.InfoLevel)

// Trace writes one of spec.md §6's scrape-format lines verbatim, e.g.
// Trace(pid, "PAGEFAULT va=%#x access=%s cause=%s", va, access, cause).
// It bypasses logrus's structured formatter entirely: the contract is a
// byte-stable line, not a log record.
func (lg *Logger) Trace(pid int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(lg.l.Out, "[pid %d] %s\n", pid, msg)
}

// TraceLine writes a scrape-format line with no pid prefix, used by the
// fair scheduler's multi-line per-decision dump (spec.md §6).
func (lg *Logger) TraceLine(format string, args ...interface{}) {
	fmt.Fprintf(lg.l.Out, format+"\n", args...)
}

// Info logs an ordinary structured informational message.
func (lg *Logger) Info(fields logrus.Fields, msg string) {
	lg.l.WithFields(fields).Info(msg)
}

// Warn logs a structured warning.
func (lg *Logger) Warn(fields logrus.Fields, msg string) {
	lg.l.WithFields(fields).Warn(msg)
}

// Error logs a structured error.
func (lg *Logger) Error(fields logrus.Fields, msg string) {
	lg.l.WithFields(fields).Error(msg)
}
