package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultServer = "http://localhost:3000"

	envServer = "NOTES_SERVER"
	envToken  = "NOTES_TOKEN"
)

// Settings is persisted by login at DefaultConfigPath.
type Settings struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".notekeeper", "config.yaml")
	}
	return filepath.Join(home, ".config", "notekeeper", "config.yaml")
}

// LoadSettings reads path; a missing file yields empty settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// holds a bearer token
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// resolve applies precedence: flag, then environment, then file, then default.
func resolve(flag, env, file, fallback string) string {
	for _, v := range []string{flag, os.Getenv(env), file} {
		if v != "" {
			return v
		}
	}
	return fallback
}
