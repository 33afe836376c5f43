// Package logger provides a structured logging facility based on Zap.
//
// # Run Awareness
//
// Every synchronization run gets its own id. WithRunID attaches it to a logger so that
// all entries written during one run (fetch, per-record skips, summary) can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Sync started")
//
//	l := logger.WithRunID(log, runID)
//	l.Warn("Record skipped", zap.Error(err))
package logger
