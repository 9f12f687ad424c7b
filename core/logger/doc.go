// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Correlation
//
// Two helpers attach correlation identifiers to log entries:
//
//   - WithRunID tags every event of one sync run with the run's uuid, so a
//     full run (token fetch, paging, reconciliation, reindex submission) can
//     be followed as one trace.
//   - WithRayID extracts the per-request RayID from a Fiber context for the
//     admin API endpoints.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	// In a sync run:
//	l := logger.WithRunID(log, runID)
//	l.Warn("Skipping invalid record", zap.Error(err))
package logger
