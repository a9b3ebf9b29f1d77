package logger

import (
	"io"
	"os"

	"github.com/campuscoders/campus-cli/pkg/config"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger
func Init(verbose bool) {
	logLevel := log.InfoLevel
	if lvl, err := log.ParseLevel(config.GetString("log.level")); err == nil {
		logLevel = lvl
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	logger = log.NewWithOptions(writer(), log.Options{
		ReportTimestamp: true,
		Level:           logLevel,
	})
}

// writer returns a rotating log file, or stderr when no log file is configured.
func writer() io.Writer {
	logFile := config.GetString("log.file")
	if logFile == "" {
		return os.Stderr
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return os.Stderr
	}
	_ = f.Close()

	return &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    config.GetInt("log.max_size_mb"),
		MaxBackups: config.GetInt("log.max_backups"),
		MaxAge:     config.GetInt("log.max_age_days"),
		Compress:   true,
	}
}

// SetOutput replaces the logger with one writing to w.
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{Level: level})
}

// With returns a component logger carrying a prefix. It is safe to call
// before Init; the result then discards everything.
func With(prefix string) *log.Logger {
	if logger == nil {
		return log.New(io.Discard)
	}
	return logger.WithPrefix(prefix)
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
