// Package log provides privacy-aware logging with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Query-string stripping for logged URLs
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Privacy Features
//
// The PrivacyHandler automatically sanitizes sensitive information in log
// output:
//   - Query strings and fragments of logged URLs, where tracker parameters
//     carry user identifiers
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure in logs that may be shared or stored. A tool that summarizes
// tracking should not itself leak what it observed users loading.
//
// # Usage
//
//	// Create a privacy-aware logger
//	logger := log.NewPrivacyLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("resource detected",
//	    "url", "https://cdn.tracker.example/pixel?uid=12345", // uid is stripped
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
