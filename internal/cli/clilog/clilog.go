// Package clilog is the curio CLI's file logger. Terminal output goes
// through formatter; this log only records what happened.
package clilog

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/curiohub/curiohub/internal/cli/config"
)

var logger *log.Logger

// Init opens the configured log file, falling back to stderr.
func Init(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	} else if parsed, err := log.ParseLevel(config.GetString("log.level")); err == nil {
		level = parsed
	}

	f, err := os.OpenFile(config.GetString("log.file"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		f = os.Stderr
	}

	logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true, Prefix: "curio"})
	logger.SetLevel(level)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}
