// Package logging provides structured logging for BitBound Core.
//
// It wraps the standard library's log/slog with:
//   - Configuration-driven setup (level, format, output)
//   - Default fields (service name, version)
//   - Component-scoped child loggers via With
//
// The *Logger type satisfies the Logger interfaces declared by consumer
// packages (event, mqtt, rulestore), which accept any implementation
// with Debug/Info/Warn/Error methods.
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("daemon starting", "site", cfg.Site.ID)
//
//	schedLogger := logger.With("component", "scheduler")
package logging
