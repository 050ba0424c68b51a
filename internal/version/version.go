// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.1.0"

// Milestones:
// 0.1.0 - Sun/Moon ephemeris engine, world-frame vectors, terminator, TUI sky view, headless export, validation sweep
