package fetch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/webrisk/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a report saved as .json, .yaml or .yml.
func LoadFile(path string) (*model.WebsiteReport, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var report model.WebsiteReport
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &report)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &report)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse report file %s: %w", path, err)
	}
	return &report, nil
}
