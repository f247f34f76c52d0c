package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is a leveled logger wrapper.
type Logger struct {
	entry   *logrus.Logger
	enabled bool
}

var globalLogger = &Logger{enabled: false}

// Init initializes the logger.
// Console output goes to stderr; stdout is reserved for reports.
func Init(enabled bool, levelStr, logFile string, console bool) error {
	if !enabled {
		globalLogger = &Logger{enabled: false}
		return nil
	}

	var writers []io.Writer

	if logFile != "" {
		dir := filepath.Dir(logFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
	}

	if console || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	return initWriter(io.MultiWriter(writers...), levelStr)
}

func initWriter(w io.Writer, levelStr string) error {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(parseLevel(levelStr))
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})

	globalLogger = &Logger{entry: l, enabled: true}
	return nil
}

func parseLevel(levelStr string) logrus.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Enabled reports whether messages at the given level are emitted.
func Enabled(level string) bool {
	if globalLogger == nil || !globalLogger.enabled {
		return false
	}
	return globalLogger.entry.IsLevelEnabled(parseLevel(level))
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	if globalLogger == nil || !globalLogger.enabled {
		return
	}
	globalLogger.entry.Debugf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	if globalLogger == nil || !globalLogger.enabled {
		return
	}
	globalLogger.entry.Infof(format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	if globalLogger == nil || !globalLogger.enabled {
		return
	}
	globalLogger.entry.Warnf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	if globalLogger == nil || !globalLogger.enabled {
		return
	}
	globalLogger.entry.Errorf(format, args...)
}

// WithFields logs a message at the given level with structured fields.
func WithFields(level string, fields map[string]interface{}, msg string) {
	if !Enabled(level) {
		return
	}
	globalLogger.entry.WithFields(logrus.Fields(fields)).Log(parseLevel(level), msg)
}
