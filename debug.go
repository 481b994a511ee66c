package stages

import (
	"os"

	"github.com/charmbracelet/log"
)

// pkgLogger is shared by components that are not owned by an Engine. Engines
// carry their own logger from Config.
var pkgLogger = newLogger()

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "stages",
	})
	l.SetLevel(log.WarnLevel)
	return l
}

func logger() *log.Logger {
	return pkgLogger
}

// SetLogger replaces the package logger. A nil logger restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = newLogger()
	}
	pkgLogger = l
}

// SetDebugMode switches the package logger between warn and debug level.
// In debug mode tier detection, transform updates and quality adjustments
// are logged.
func SetDebugMode(enabled bool) {
	if enabled {
		pkgLogger.SetLevel(log.DebugLevel)
		return
	}
	pkgLogger.SetLevel(log.WarnLevel)
}
