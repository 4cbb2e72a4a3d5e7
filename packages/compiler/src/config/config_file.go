package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParseConfigFile reads a YAML change detector config. Keys missing from
// the file keep their default value.
func ParseConfigFile(path string) (*ChangeDetectorGenConfig, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := NewChangeDetectorGenConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.UtilName == "" {
		config.UtilName = DefaultUtilName
	}
	if config.ChangeDetectorStateName == "" {
		config.ChangeDetectorStateName = DefaultChangeDetectorStateName
	}

	return config, nil
}
