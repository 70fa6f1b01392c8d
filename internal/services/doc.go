// Package services defines shared utilities consumed by the troubleshooting
// pages and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers, queue names, and check
//     names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new checks so operational behaviour (error
// handling, observability) stays uniform across the troubleshooter.
package services
