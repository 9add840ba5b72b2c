// Package version contains information on the current version of the
// program. It is split from the main program for easy use.
package version

// Current is the string representing the current version of fgrammar.
const Current = "0.1.0"

// DaemonCurrent is the string representing the current version of the
// fgrammard build-as-a-service daemon, versioned separately from the core
// library/CLI.
const DaemonCurrent = "0.1.0"
