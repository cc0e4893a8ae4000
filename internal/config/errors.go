package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidFormat is returned for an unsupported output format.
	ErrInvalidFormat = errors.New("invalid output format")

	// ErrInvalidListenAddr is returned when the server address is not host:port.
	ErrInvalidListenAddr = errors.New("invalid listen address: expected host:port")

	// ErrNoAPIEndpoint is returned by RequireAPI when no endpoint is configured.
	ErrNoAPIEndpoint = errors.New("no api endpoint configured: set api.endpoint in .webrisk or use --endpoint")

	// ErrPDFToStdout is returned when PDF output has no destination file.
	ErrPDFToStdout = errors.New("pdf output requires --output")
)
