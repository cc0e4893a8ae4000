package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/webrisk/internal/report"
	"github.com/nao1215/webrisk/internal/view"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webrisk"

	// DefaultTimeout bounds each upstream request.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of reports rendered concurrently.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies webrisk to the upstream API.
	DefaultUserAgent = "webrisk/1.0 (+https://github.com/nao1215/webrisk)"

	// DefaultMaxBodySize limits upstream response bodies to 2MB.
	DefaultMaxBodySize = 2 * 1024 * 1024

	// DefaultFormat is the output format when none is given.
	DefaultFormat = "text"

	// DefaultListenAddr is where the preview server listens.
	DefaultListenAddr = "127.0.0.1:8080"

	// APIKeyEnv is read when no API key is configured.
	APIKeyEnv = "WEBRISK_API_KEY"
)

// Config holds all configuration options for webrisk.
// It is populated from defaults, the config file and CLI flags, in that
// order, and passed through the application explicitly.
type Config struct {
	// APIEndpoint is the upstream report URL. The target is sent in the
	// "url" query parameter.
	APIEndpoint string

	// APIKey is sent in the X-Api-Key header. Never logged.
	APIKey string

	// ProxyAddress routes upstream requests through a SOCKS5 proxy
	// ("host:port"). Empty means direct.
	ProxyAddress string

	// Timeout is the per-request timeout for upstream calls.
	Timeout time.Duration

	// MaxBodySize caps upstream responses in bytes. 0 means the default.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent upstream.
	UserAgent string

	// Format is the output format name (html, markdown, text, json, pdf).
	Format string

	// ReportFile is the output path. Empty writes to stdout. With several
	// targets it names a directory.
	ReportFile string

	// FullPage wraps HTML output in a standalone document.
	FullPage bool

	// BatchSize is the number of reports processed concurrently.
	BatchSize int

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records rendered reports in history.
	SaveToDB bool

	// ListenAddr is the preview server address.
	ListenAddr string

	// Images holds the third-party image URL templates.
	Images view.ImageEndpoints

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
		Format:      DefaultFormat,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
		ListenAddr:  DefaultListenAddr,
		Images:      view.DefaultImageEndpoints(),
	}
}

// XDGDataDir returns the XDG data directory for webrisk.
// On Linux: ~/.local/share/webrisk
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webrisk.
// On Linux: ~/.config/webrisk
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyEnv fills values not set elsewhere from the environment.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(APIKeyEnv)
	}
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (report.Format, error) {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return f, nil
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidListenAddr, c.ListenAddr)
		}
	}
	return nil
}

// RequireAPI reports whether upstream fetching is configured.
func (c *Config) RequireAPI() error {
	if c.APIEndpoint == "" {
		return ErrNoAPIEndpoint
	}
	return nil
}
