// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The SecureHandler masks:
//   - HTTP headers such as Authorization, Cookie and X-Api-Key
//   - attributes whose key names a credential (password, token, api_key, ...)
//   - values that look like secrets (JWTs, bearer tokens, long API keys)
//   - credentials embedded in URLs, as userinfo or query parameters
//
// Even in verbose mode, sensitive values are masked so that logs can be
// shared when reporting upstream API problems.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("requesting report",
//	    "endpoint", "https://api.example.com/v1?key=abc", // key value masked
//	    "url", "https://example.com",
//	)
//	slog.SetDefault(logger)
package log
