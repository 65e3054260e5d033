// Copyright (c) 2026 Keymaster Team
// Keyvault - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads keyvault settings from defaults, config files,
// KEYVAULT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagKeyAnnotation marks a cobra flag with the config key it overrides.
// Flags without the annotation bind to a key equal to their name.
const FlagKeyAnnotation = "keyvault_config_key"

// Config is the complete keyvault configuration.
type Config struct {
	Vault struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"vault" yaml:"vault"`
	Language string `mapstructure:"language" yaml:"language"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose,omitempty"`
	Guard    struct {
		Threshold       time.Duration `mapstructure:"threshold" yaml:"threshold"`
		ChallengeLength int           `mapstructure:"challenge_length" yaml:"challenge_length"`
	} `mapstructure:"guard" yaml:"guard"`
	Clipboard struct {
		ClearAfter time.Duration `mapstructure:"clear_after" yaml:"clear_after"`
	} `mapstructure:"clipboard" yaml:"clipboard"`
}

// Defaults returns the default value of every config key.
func Defaults() map[string]any {
	return map[string]any{
		"vault.path":             "./vault.db",
		"language":               "en",
		"verbose":                false,
		"guard.threshold":        "50ms",
		"guard.challenge_length": 6,
		"clipboard.clear_after":  "30s",
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keyvault")
		default: // Linux, macOS, etc.
			configDir = "/etc/keyvault"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keyvault")
	}

	return filepath.Join(configDir, "keyvault.yaml"), nil
}

// LoadConfig builds a T from defaults, the first keyvault.yaml found (or
// configFile when non-nil and non-empty), the environment and the flags of
// cmd. A missing config file is not an error.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyvault")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("keyvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		var bindErr error
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if bindErr != nil {
				return
			}
			key := f.Name
			if ann, ok := f.Annotations[FlagKeyAnnotation]; ok && len(ann) > 0 {
				key = ann[0]
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
