// Package debuglog provides the structured, section/bullet-style debug
// output shared by sandbox-run and sandbox-enter when invoked with
// -d/--debug. It is disabled by default and never substitutes for the
// mandatory stderr error diagnostics both binaries always print on
// failure.
package debuglog

import (
	"fmt"
	"io"
)

// Logger is disabled when its output is nil; every method is then a no-op.
type Logger struct {
	output io.Writer
}

// New creates a Logger writing to output. Pass nil to get a disabled
// logger.
func New(output io.Writer) *Logger {
	return &Logger{output: output}
}

// Enabled reports whether this logger writes anything.
func (l *Logger) Enabled() bool {
	return l != nil && l.output != nil
}

// Section outputs a section header.
func (l *Logger) Section(name string) {
	if !l.Enabled() {
		return
	}

	_, _ = fmt.Fprintf(l.output, "\n=== %s ===\n", name)
}

// Bulletf outputs an indented bullet point item.
func (l *Logger) Bulletf(format string, args ...any) {
	if !l.Enabled() {
		return
	}

	_, _ = fmt.Fprintf(l.output, "  • "+format+"\n", args...)
}

// Logf outputs a plain formatted line.
func (l *Logger) Logf(format string, args ...any) {
	if !l.Enabled() {
		return
	}

	_, _ = fmt.Fprintf(l.output, format+"\n", args...)
}
