package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/kubestellar-mcp"
	projectConfigDir = ".kubestellar-mcp"
	configFileName   = "config.yaml"
)

// LoadConfig loads the configuration by layering default, user, and project
// settings, then applying environment variable overrides. A .env file in the
// working directory is honoured the same way the original server honoured it.
func LoadConfig() (Config, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User-specific configuration
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		// User config is optional; don't fail.
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else {
		if _, err := os.Stat(userConfigPath); !os.IsNotExist(err) {
			userConfig, err := loadConfigFromFile(userConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
			}
			config = mergeConfigs(config, userConfig)
		}
	}

	// 3. Project-specific configuration
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else {
		if _, err := os.Stat(projectConfigPath); !os.IsNotExist(err) {
			projectConfig, err := loadConfigFromFile(projectConfigPath)
			if err != nil {
				return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
			}
			config = mergeConfigs(config, projectConfig)
		}
	}

	// 4. Environment overrides (.env file first, then the real environment)
	_ = godotenv.Load() // missing .env is fine
	applyEnvOverrides(&config)

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in the
// overlay leave the base value untouched.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.KubeStellar.Version != "" {
		merged.KubeStellar.Version = overlay.KubeStellar.Version
	}
	if overlay.KubeStellar.DocsURL != "" {
		merged.KubeStellar.DocsURL = overlay.KubeStellar.DocsURL
	}
	if overlay.KubeStellar.RepoURL != "" {
		merged.KubeStellar.RepoURL = overlay.KubeStellar.RepoURL
	}

	if overlay.Diagnostics.ProbeTimeout != 0 {
		merged.Diagnostics.ProbeTimeout = overlay.Diagnostics.ProbeTimeout
	}
	if overlay.Diagnostics.ConnectivityTimeout != 0 {
		merged.Diagnostics.ConnectivityTimeout = overlay.Diagnostics.ConnectivityTimeout
	}
	if overlay.Diagnostics.Concurrency != 0 {
		merged.Diagnostics.Concurrency = overlay.Diagnostics.Concurrency
	}
	if overlay.Diagnostics.Verbose {
		merged.Diagnostics.Verbose = true
	}

	if overlay.Demo.Platform != "" {
		merged.Demo.Platform = overlay.Demo.Platform
	}
	if len(overlay.Demo.Clusters) > 0 {
		merged.Demo.Clusters = overlay.Demo.Clusters
	}
	if len(overlay.Demo.Contexts) > 0 {
		merged.Demo.Contexts = overlay.Demo.Contexts
	}
	if overlay.Demo.ProvisionTimeout != 0 {
		merged.Demo.ProvisionTimeout = overlay.Demo.ProvisionTimeout
	}

	if overlay.LogLevel != "" {
		merged.LogLevel = overlay.LogLevel
	}

	return merged
}

// applyEnvOverrides applies the environment variable surface on top of the
// file-based configuration.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("KUBESTELLAR_VERSION"); v != "" {
		config.KubeStellar.Version = v
	}
	if v := os.Getenv("KUBESTELLAR_DOCS_URL"); v != "" {
		config.KubeStellar.DocsURL = v
	}
	if v := os.Getenv("KUBESTELLAR_PLATFORM"); v != "" {
		if platform, err := ParsePlatform(v); err == nil {
			config.Demo.Platform = platform
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring KUBESTELLAR_PLATFORM: %v\n", err)
		}
	}
	if v := os.Getenv("KUBESTELLAR_PROBE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.Diagnostics.ProbeTimeout = d
		}
	}
	if v := os.Getenv("KUBESTELLAR_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Diagnostics.Concurrency = n
		}
	}
	if v := os.Getenv("KUBESTELLAR_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Diagnostics.Verbose = b
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}

// GetUserConfigDir returns the user configuration directory path.
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
