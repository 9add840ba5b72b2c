// Package logging is a minimal level-filtered wrapper around the standard
// log package, matching tunaq's "ERROR:"/"WARNING:"/"INFO:" prefix
// convention in server/*.go but adding the threshold spec's drivers need:
// FGRAMMAR_LOG_LEVEL controls which prefixes actually print.
package logging

import (
	"log"
	"os"
	"strings"
)

// Level is a logging verbosity threshold, ordered from most to least
// verbose.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

// EnvLogLevel is the environment variable drivers read their threshold
// from at startup.
const EnvLogLevel = "FGRAMMAR_LOG_LEVEL"

var threshold = Info

// ParseLevel maps a level name ("debug", "info", "warn", "error", case
// insensitive) to a Level. Unrecognized names return Info, false.
func ParseLevel(name string) (Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	default:
		return Info, false
	}
}

// Init sets the package threshold from FGRAMMAR_LOG_LEVEL, defaulting to
// Info if unset or unrecognized.
func Init() {
	if name := os.Getenv(EnvLogLevel); name != "" {
		if lvl, ok := ParseLevel(name); ok {
			threshold = lvl
			return
		}
		log.Printf("WARNING: unrecognized %s value %q, using info", EnvLogLevel, name)
	}
	threshold = Info
}

// SetLevel overrides the threshold directly, for tests and callers that
// resolve their level from a config file rather than the environment.
func SetLevel(lvl Level) {
	threshold = lvl
}

func logf(lvl Level, prefix, format string, args ...interface{}) {
	if lvl < threshold {
		return
	}
	log.Printf(prefix+format, args...)
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) { logf(Debug, "DEBUG: ", format, args...) }

// Infof logs at Info level.
func Infof(format string, args ...interface{}) { logf(Info, "INFO: ", format, args...) }

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) { logf(Warn, "WARNING: ", format, args...) }

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) { logf(Error, "ERROR: ", format, args...) }
