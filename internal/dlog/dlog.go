// Package dlog provides the package-level structured logger used throughout
// the solver. It stands in for dReal's DREAL_LOG_DEBUG/DREAL_LOG_TRACE/
// DREAL_LOG_INFO macros, which are sprinkled around every prune/branch/
// evaluate step in the original C++ engine.
package dlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger instance. Callers attach fields with WithField(s)
// rather than interpolating context into the message, matching the rest of
// the ambient logging stack adopted for this module.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	if lvl := os.Getenv("DICP_LOG_LEVEL"); lvl != "" {
		if parsed, err := logrus.ParseLevel(lvl); err == nil {
			l.SetLevel(parsed)
		}
	}
	return l
}

// SetLevel adjusts the global log level, used by cmd/dicp's --verbose flag.
func SetLevel(level logrus.Level) {
	Log.SetLevel(level)
}
