package logger

import (
	"github.com/fatih/color"
)

// Colorized printf-style functions for the different log levels. They are
// package-level variables so callers can log without carrying a logger
// value around; the installer steps are a linear pipeline and share one
// console.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warning messages in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs error messages in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Debug logs debug messages in cyan when enabled, otherwise it is a no-op.
// It is reassigned during Init based on the --debug flag.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging. It must be called before any
// step runs; the root command does this in its PersistentPreRun hook.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
