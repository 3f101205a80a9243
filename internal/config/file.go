package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFilename = "activewin.yaml"
	configDir      = ".config/activewin"
)

// FilePath returns $ACTIVEWIN_CONFIG, or ~/.config/activewin/activewin.yaml.
func FilePath() string {
	if path := os.Getenv("ACTIVEWIN_CONFIG"); path != "" {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, configDir, configFilename)
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the file
// keep their current value; a missing file leaves cfg untouched.
func LoadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// SaveFile writes cfg as YAML to path, creating its directory.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to save config")
	}
	return nil
}
