// Package logging provides structured logging for TaskHub Core.
//
// It wraps log/slog with a JSON (production) or text (development) handler,
// level filtering, and default service/version fields on every entry.
//
// Configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Never log passwords, password hashes or bearer tokens.
package logging
