// Package logger is the process-wide console log. Warnings and errors always
// reach stderr; --verbose adds debug and info lines and step headers so a
// user can follow an analysis run.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
)

// console is the active configuration. It is replaced wholesale, never mutated.
type console struct {
	w       io.Writer
	verbose bool
	log     *log.Logger
}

var (
	mu      sync.RWMutex
	current = newConsole(os.Stderr, false)
)

func newConsole(w io.Writer, verbose bool) *console {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return &console{
		w:       w,
		verbose: verbose,
		log: &log.Logger{
			Level: level,
			Writer: &log.ConsoleWriter{
				Writer: w,
				Formatter: func(w io.Writer, a *log.FormatterArgs) (int, error) {
					return fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(a.Level), a.Message)
				},
			},
		},
	}
}

func active() *console {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	current = newConsole(current.w, v)
}

func IsVerbose() bool {
	return active().verbose
}

// SetOutput redirects all log output; tests pass a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = newConsole(w, current.verbose)
}

func Debug(format string, args ...any) {
	active().log.Debug().Msgf(format, args...)
}

func Info(format string, args ...any) {
	active().log.Info().Msgf(format, args...)
}

func Warn(format string, args ...any) {
	active().log.Warn().Msgf(format, args...)
}

func Error(format string, args ...any) {
	active().log.Error().Msgf(format, args...)
}

// Section prints a "=== name ===" header in verbose mode.
func Section(name string) {
	if c := active(); c.verbose {
		fmt.Fprintf(c.w, "\n=== %s ===\n", name)
	}
}

// Elapsed logs at debug level how long what took since start.
func Elapsed(what string, start time.Time) {
	Debug("%s took %s", what, time.Since(start).Round(time.Millisecond))
}
