// Package logging builds the slog loggers used across harmonia: a compact
// console handler for interactive use, a JSON handler for machine
// consumption, typed attribute helpers, and a sampler that keeps long-running
// progress loops from flooding the log.
package logging
