// Package logger holds the process-wide diagnostic logger.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Log is the application logger. Calls take a message followed by key/value pairs:
//
//	logger.Log.Error("checkout", "tag", tag, "err", err)
var Log = New(os.Stderr)

// New returns a logger writing to w at info level.
func New(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "pybuilder",
		Level:  log.InfoLevel,
	})
}

// SetVerbose switches the application logger to debug level.
func SetVerbose(verbose bool) {
	if verbose {
		Log.SetLevel(log.DebugLevel)
		return
	}
	Log.SetLevel(log.InfoLevel)
}
