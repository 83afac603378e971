// Package log builds the application's slog loggers.
//
// Every logger returned by this package wraps its handler in a
// RedactingHandler, which masks:
//   - attributes whose key names a credential (cookie, authorization,
//     password, token and similar)
//   - string values shaped like bearer tokens, JWTs or private keys
//   - card numbers and US social security numbers embedded in any string
//
// Crawled pages routinely contain personal data, and the crawler logs page
// titles and URLs, so masking is applied to every record regardless of level.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("fetching", "url", u, "cookie", "session=abc") // cookie=***REDACTED***
package log
