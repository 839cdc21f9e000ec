package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed limits.yaml
var defaultLimits []byte

// Limits are the size bounds of the namespace and the transfer surface.
//
// MaxFolderNameLength is counted in runes, MaxFileNameLength in bytes since
// sanitized filenames end up on disks and in headers. MaxTreeDepth bounds the
// ancestor walk used for cycle detection.
type Limits struct {
	MaxFolderNameLength int   `yaml:"max_folder_name_length"`
	MaxFileNameLength   int   `yaml:"max_file_name_length"`
	MaxUploadSize       int64 `yaml:"max_upload_size"`
	MaxTreeDepth        int   `yaml:"max_tree_depth"`
}

// DefaultLimits returns the embedded limits
func DefaultLimits() *Limits {
	var l Limits
	if err := yaml.Unmarshal(defaultLimits, &l); err != nil {
		// embedded file is part of the binary
		panic(fmt.Sprintf("invalid embedded limits.yaml: %v", err))
	}
	return &l
}

// LoadLimits returns the embedded limits overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadLimits(path string) (*Limits, error) {
	l := DefaultLimits()
	if path == "" {
		return l, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits file: %w", err)
	}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	if l.MaxFolderNameLength <= 0 || l.MaxFileNameLength <= 0 || l.MaxUploadSize <= 0 || l.MaxTreeDepth <= 0 {
		return nil, fmt.Errorf("limits in %s must be positive", path)
	}
	return l, nil
}
