// Package logging builds the process-wide slog logger.
//
// Logs go to stderr by default so they never mix with report output on
// stdout. When a log file is configured the output is written to a
// lumberjack-rotated file instead.
package logging
