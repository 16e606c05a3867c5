// Package config provides functions for loading and saving pwm configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/alan/pwm/cmd"
)

// GlobalConfigPath returns ~/.config/pwm/config.toml (or the platform equivalent)
func GlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "pwm", "config.toml"), nil
}

// LoadConfig loads the configuration from the specified file on top of the defaults.
// A missing file is not an error.
func LoadConfig(filename string) (*cmd.Config, error) {
	return LoadFiles(filename)
}

// LoadFiles decodes each existing file in order onto the defaults, so later files win
func LoadFiles(filenames ...string) (*cmd.Config, error) {
	config := cmd.Default()

	for _, filename := range filenames {
		if filename == "" {
			continue
		}
		data, err := os.ReadFile(filename) //nolint:gosec // Config filename is from command-line flag
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := decode(filename, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	return config, nil
}

func decode(filename string, data []byte, config *cmd.Config) error {
	if isYAML(filename) {
		return yaml.Unmarshal(data, config)
	}
	_, err := toml.Decode(string(data), config)
	return err
}

// SaveConfig saves the configuration to the specified file.
// The encoding follows the extension: .yaml/.yml for YAML, anything else TOML.
func SaveConfig(filename string, config *cmd.Config) error {
	var data []byte
	if isYAML(filename) {
		encoded, err := yaml.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = encoded
	} else {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		data = buf.Bytes()
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides credentials and commands from the environment.
// PWM_GITHUB_TOKEN takes precedence over GITHUB_TOKEN.
func ApplyEnv(config *cmd.Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	set := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&config.GitHub.Token, "PWM_GITHUB_TOKEN", "GITHUB_TOKEN")
	set(&config.Jira.Token, "PWM_JIRA_TOKEN")
	set(&config.Jira.Email, "PWM_JIRA_EMAIL")
	set(&config.Jira.BaseURL, "PWM_JIRA_BASE_URL")
	set(&config.AI.Command, "PWM_AI_COMMAND")
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
