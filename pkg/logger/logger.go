// Package logger configures the process-wide go-logging backend.
package logger

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

const (
	LogFormat      = "%{time:2006-01-02 15:04:05.000} [%{level:.4s}] %{module} %{shortfile} %{message}"
	LogColorFormat = "%{color}%{time:2006-01-02 15:04:05.000} [%{level:.4s}]%{color:reset} %{module} %{shortfile} %{message}"
)

// Init sends log records at or above levelString to w. Colour escapes are
// only used when w is a terminal-like stream (stderr or stdout).
func Init(w io.Writer, levelString string) error {
	level, err := logging.LogLevel(levelString)
	if err != nil {
		return err
	}
	format := LogFormat
	if w == os.Stderr || w == os.Stdout {
		format = LogColorFormat
	}
	backend := logging.AddModuleLevel(
		logging.NewBackendFormatter(
			logging.NewLogBackend(w, "", 0),
			logging.MustStringFormatter(format),
		),
	)
	backend.SetLevel(level, "")
	logging.SetBackend(backend)
	return nil
}

// InitConsoleLog logs to stderr at levelString.
func InitConsoleLog(levelString string) error {
	return Init(os.Stderr, levelString)
}
