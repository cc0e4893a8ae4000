package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/webrisk/internal/view"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".webrisk"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .webrisk configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	API     APIFile             `yaml:"api,omitempty"`
	Output  OutputFile          `yaml:"output,omitempty"`
	History HistoryFile         `yaml:"history,omitempty"`
	Server  ServerFile          `yaml:"server,omitempty"`
	Images  view.ImageEndpoints `yaml:"images,omitempty"`
}

// APIFile configures the upstream report API.
type APIFile struct {
	Endpoint    string        `yaml:"endpoint,omitempty"`
	Key         string        `yaml:"key,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
}

// OutputFile configures rendering.
type OutputFile struct {
	Format    string `yaml:"format,omitempty"`
	FullPage  bool   `yaml:"fullPage,omitempty"`
	BatchSize int    `yaml:"batchSize,omitempty"`
}

// HistoryFile configures the history database.
type HistoryFile struct {
	Dir string `yaml:"dir,omitempty"`

	// Save defaults --save to true when set.
	Save bool `yaml:"save,omitempty"`
}

// ServerFile configures the preview server.
type ServerFile struct {
	Listen string `yaml:"listen,omitempty"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// Apply copies every value set in the file into c.
func (cf *File) Apply(c *Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	set(&c.APIEndpoint, cf.API.Endpoint)
	set(&c.APIKey, cf.API.Key)
	set(&c.ProxyAddress, cf.API.Proxy)
	set(&c.UserAgent, cf.API.UserAgent)
	if cf.API.Timeout > 0 {
		c.Timeout = cf.API.Timeout
	}
	if cf.API.MaxBodySize > 0 {
		c.MaxBodySize = cf.API.MaxBodySize
	}

	set(&c.Format, cf.Output.Format)
	if cf.Output.FullPage {
		c.FullPage = true
	}
	if cf.Output.BatchSize > 0 {
		c.BatchSize = cf.Output.BatchSize
	}

	set(&c.DBDir, cf.History.Dir)
	if cf.History.Save {
		c.SaveToDB = true
	}

	set(&c.ListenAddr, cf.Server.Listen)

	set(&c.Images.Screenshot, cf.Images.Screenshot)
	set(&c.Images.Favicon, cf.Images.Favicon)
	set(&c.Images.Flag, cf.Images.Flag)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .webrisk in the current directory
// 3. Look for .webrisk in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), XDGConfigFile)
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
