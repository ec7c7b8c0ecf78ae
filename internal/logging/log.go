// Package logging wraps charmbracelet/log with the printf-style helpers
// used throughout this repo, grounded on common/log/log.go.
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger *log.Logger

// Init sets up the process-wide logger with the given prefix and level
// ("debug", "info", "warn", "error").
func Init(appName, level string) {
	logger = log.New(os.Stderr)
	logger.SetPrefix(appName)
	logger.SetReportTimestamp(true)
	logger.SetTimeFormat(time.DateTime)
	logger.SetLevel(parseLevel(level))
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func ensure() {
	if logger == nil {
		Init("mahjong3p", "info")
	}
}

func Fatal(format string, args ...any) {
	ensure()
	logger.Fatal(sprintf(format, args...))
}

func Info(format string, args ...any) {
	ensure()
	logger.Info(sprintf(format, args...))
}

func Warn(format string, args ...any) {
	ensure()
	logger.Warn(sprintf(format, args...))
}

func Error(format string, args ...any) {
	ensure()
	logger.Error(sprintf(format, args...))
}

func Debug(format string, args ...any) {
	ensure()
	logger.Debug(sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
