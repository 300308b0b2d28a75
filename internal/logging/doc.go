// Package logging provides structured logging for plexdeck.
//
// Logging is silent by default so that neither the CLI output nor the
// dashboard's alternate screen is polluted. Set PLEXDECK_LOG_LEVEL to
// "debug", "info", "warn" or "error" to enable output, and optionally
// PLEXDECK_LOG_FILE to redirect it to a file while the dashboard owns
// the terminal.
//
// The package wraps a single zap logger behind package-level helpers:
//
//	logging.InitializeFromEnv()
//	logging.Info("connected", zap.String("endpoint", url))
//	defer logging.Sync()
package logging
