package logger

import (
	"github.com/fatih/color" // Colored console output, one color per log level
)

// Colorized printf-style functions, one per level. They all write to color.Output,
// which tests and --no-color runs can redirect or strip.

// Info logs informational messages in green.
var Info = color.New(color.FgGreen).PrintfFunc()

// Warn logs warnings in bright magenta.
var Warn = color.New(color.FgHiMagenta).PrintfFunc()

// Error logs failures in red.
var Error = color.New(color.FgRed).PrintfFunc()

// Section prints a bright blue heading that opens a phase (database setup, teardown, ...).
var Section = color.New(color.FgHiBlue).PrintfFunc()

// Notice prints yellow progress lines for steps that are about to run.
var Notice = color.New(color.FgYellow).PrintfFunc()

// Success prints the bright green run summary.
var Success = color.New(color.FgHiGreen).PrintfFunc()

// Debug logs cyan diagnostics when enabled. It is a no-op until Init turns it on,
// so packages can call it safely from tests without initializing the logger.
var Debug = func(format string, a ...any) {}

// Init configures the package for a run.
//   - enableDebug switches Debug from a no-op to cyan output.
//   - noColor disables ANSI escapes for every level (useful when piping output to a file).
func Init(enableDebug, noColor bool) {
	if noColor {
		color.NoColor = true
	}
	if enableDebug {
		Debug = color.New(color.FgCyan).PrintfFunc()
	} else {
		Debug = func(format string, a ...any) {}
	}
}
