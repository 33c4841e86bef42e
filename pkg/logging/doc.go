// Package logging provides subsystem-tagged structured logging for combell-mcp.
//
// It is a thin layer over log/slog. Every entry carries a subsystem attribute
// so log lines from the API client, the tool handlers and the HTTP gate can be
// told apart and filtered.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Server", "Listening on %s", addr)
//	logging.Debug("Combell", "GET %s", path)
//	logging.Warn("Pagination", "Stopping after %d records", n)
//	logging.Error("Tools", err, "Tool %s failed", name)
//
// Output always goes to the writer passed to Init. The stdio transport owns
// stdout, so callers pass os.Stderr there.
//
// # Secrets
//
// API keys and secrets are never logged verbatim. Use Redact:
//
//	logging.Debug("Auth", "Accepted credentials for key %s", logging.Redact(key))
//
// # Library integration
//
// Logger returns the underlying *slog.Logger for libraries that accept one,
// such as the OAuth server.
package logging
