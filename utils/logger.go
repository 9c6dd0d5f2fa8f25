package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger provides structured, leveled logging throughout the application.
type Logger struct {
	l    *log.Logger
	file *os.File
}

// NewLogger creates a Logger writing to stderr only.
func NewLogger() *Logger {
	return &Logger{l: newCharmLogger(os.Stderr)}
}

// NewFileLogger creates a Logger that mirrors its output to a timestamped
// log file under dir, creating the directory if needed.
func NewFileLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}

	name := time.Now().UTC().Format("2006-01-02 15:04:05") + " app.log"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}

	return &Logger{
		l:    newCharmLogger(io.MultiWriter(os.Stderr, f)),
		file: f,
	}, nil
}

func newCharmLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04",
	})
}

func (l *Logger) Info(format string, args ...any)  { l.l.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.l.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...any) { l.l.Errorf(format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.l.Debugf(format, args...) }

// Close closes the log file, if one is attached.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
