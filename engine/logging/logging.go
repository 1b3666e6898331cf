// Package logging is the engine-wide structured logger. Every package logs through these
// helpers so level and output are configured in one place.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func getLogger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "obsidian",
			CallerOffset:    1,
			Level:           log.InfoLevel,
		})
	})
	return singleton
}

// SetLevel sets the minimum level by name ("debug", "info", "warn", "error", "fatal").
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - error: error if the name is not a known level
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	getLogger().SetLevel(lvl)
	return nil
}

// SetOutput redirects every following log line to w.
func SetOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// SetReportCaller toggles source locations on log lines.
func SetReportCaller(report bool) {
	getLogger().SetReportCaller(report)
}

// Debug logs msg with alternating key/value pairs.
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// Fatal logs and exits the process. Reserved for setup failures.
func Fatal(msg string, args ...any) {
	getLogger().Fatal(msg, args...)
}
