// Package logging provides the severity-tagged log sink used by the WordHunt
// server. Each entry is written as "<timestamp> [<Severity>]: <message>".
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Severity classifies a log entry.
type Severity int

// Supported severities, in increasing order of importance.
const (
	Information Severity = iota
	Warning
	Error
)

// String returns the name written into each log line.
func (s Severity) String() string {
	switch s {
	case Information:
		return "Information"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Logger writes timestamped, severity-tagged lines to an underlying writer.
// It is safe for concurrent use.
type Logger struct {
	out    *log.Logger
	closer io.Closer
	mu     sync.Mutex
}

// New returns a Logger appending to the file at path, creating the parent
// directory when it does not exist. An empty path logs to stderr.
func New(path string) (*Logger, error) {
	if path == "" {
		return NewWriter(os.Stderr), nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := NewWriter(f)
	l.closer = f
	return l, nil
}

// NewWriter returns a Logger writing to w.
func NewWriter(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags)}
}

// Discard returns a Logger that drops every entry.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

// Log writes message with the given severity.
func (l *Logger) Log(severity Severity, message string) {
	if l == nil {
		return
	}
	l.out.Printf("[%s]: %s", severity, message)
}

// Infof logs a formatted message at Information severity.
func (l *Logger) Infof(format string, args ...any) {
	l.Log(Information, fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at Warning severity.
func (l *Logger) Warnf(format string, args ...any) {
	l.Log(Warning, fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at Error severity.
func (l *Logger) Errorf(format string, args ...any) {
	l.Log(Error, fmt.Sprintf(format, args...))
}

// Close releases the log file, if any. Closing twice is a no-op.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
