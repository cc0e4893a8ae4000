// Package config provides configuration structures and utilities for webrisk.
// It defines upstream API settings, output preferences, history storage and
// the preview server, and loads overrides from the .webrisk YAML file.
package config
