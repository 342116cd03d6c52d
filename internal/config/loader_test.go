package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// writeConfigFile marshals a Config into dir and returns its path.
func writeConfigFile(t *testing.T, dir string, content Config) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	data, err := yaml.Marshal(&content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// isolateConfigPaths points the loader at non-existent files so tests never
// pick up real configuration from the machine.
func isolateConfigPaths(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	originalUser := getUserConfigPath
	originalProject := getProjectConfigPath
	t.Cleanup(func() {
		getUserConfigPath = originalUser
		getProjectConfigPath = originalProject
	})

	getUserConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "no-user", configFileName), nil
	}
	getProjectConfigPath = func() (string, error) {
		return filepath.Join(tempDir, "no-project", configFileName), nil
	}
	return tempDir
}

func TestLoadConfigDefaultsOnly(t *testing.T) {
	isolateConfigPaths(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.KubeStellar.Version, cfg.KubeStellar.Version)
	assert.Equal(t, defaults.Diagnostics.ProbeTimeout, cfg.Diagnostics.ProbeTimeout)
	assert.Equal(t, defaults.Demo.Platform, cfg.Demo.Platform)
	assert.ElementsMatch(t, defaults.Demo.Clusters, cfg.Demo.Clusters)
}

func TestLoadConfigUserOverride(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	userDir := filepath.Join(tempDir, "user")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	userPath := writeConfigFile(t, userDir, Config{
		KubeStellar: KubeStellarSettings{Version: "0.99.0"},
		Diagnostics: DiagnosticsSettings{Concurrency: 8},
	})
	getUserConfigPath = func() (string, error) { return userPath, nil }

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.99.0", cfg.KubeStellar.Version)
	assert.Equal(t, 8, cfg.Diagnostics.Concurrency)
	// Untouched fields keep their defaults.
	assert.Equal(t, GetDefaultConfig().Demo.Platform, cfg.Demo.Platform)
	assert.Equal(t, GetDefaultConfig().Diagnostics.ProbeTimeout, cfg.Diagnostics.ProbeTimeout)
}

func TestLoadConfigProjectOverridesUser(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	userDir := filepath.Join(tempDir, "user")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	userPath := writeConfigFile(t, userDir, Config{
		KubeStellar: KubeStellarSettings{Version: "0.50.0"},
		Demo:        DemoSettings{Platform: PlatformK3d},
	})
	getUserConfigPath = func() (string, error) { return userPath, nil }

	projectDir := filepath.Join(tempDir, "project")
	require.NoError(t, os.MkdirAll(projectDir, 0755))
	projectPath := writeConfigFile(t, projectDir, Config{
		KubeStellar: KubeStellarSettings{Version: "0.60.0"},
	})
	getProjectConfigPath = func() (string, error) { return projectPath, nil }

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.60.0", cfg.KubeStellar.Version, "project layer wins")
	assert.Equal(t, PlatformK3d, cfg.Demo.Platform, "user layer survives where project is silent")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	isolateConfigPaths(t)

	t.Setenv("KUBESTELLAR_VERSION", "0.42.0")
	t.Setenv("KUBESTELLAR_PLATFORM", "k3d")
	t.Setenv("KUBESTELLAR_PROBE_TIMEOUT", "45s")
	t.Setenv("KUBESTELLAR_CONCURRENCY", "2")
	t.Setenv("KUBESTELLAR_VERBOSE", "true")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.42.0", cfg.KubeStellar.Version)
	assert.Equal(t, PlatformK3d, cfg.Demo.Platform)
	assert.Equal(t, 45*time.Second, cfg.Diagnostics.ProbeTimeout)
	assert.Equal(t, 2, cfg.Diagnostics.Concurrency)
	assert.True(t, cfg.Diagnostics.Verbose)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfigInvalidEnvValuesIgnored(t *testing.T) {
	isolateConfigPaths(t)

	t.Setenv("KUBESTELLAR_PLATFORM", "podman")
	t.Setenv("KUBESTELLAR_PROBE_TIMEOUT", "soon")
	t.Setenv("KUBESTELLAR_CONCURRENCY", "-3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	defaults := GetDefaultConfig()
	assert.Equal(t, defaults.Demo.Platform, cfg.Demo.Platform)
	assert.Equal(t, defaults.Diagnostics.ProbeTimeout, cfg.Diagnostics.ProbeTimeout)
	assert.Equal(t, defaults.Diagnostics.Concurrency, cfg.Diagnostics.Concurrency)
}

func TestLoadConfigMalformedFileFails(t *testing.T) {
	tempDir := isolateConfigPaths(t)

	userDir := filepath.Join(tempDir, "user")
	require.NoError(t, os.MkdirAll(userDir, 0755))
	badPath := filepath.Join(userDir, configFileName)
	require.NoError(t, os.WriteFile(badPath, []byte("{not yaml"), 0644))
	getUserConfigPath = func() (string, error) { return badPath, nil }

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestParsePlatform(t *testing.T) {
	for _, valid := range []string{"kind", "k3d"} {
		p, err := ParsePlatform(valid)
		assert.NoError(t, err)
		assert.Equal(t, Platform(valid), p)
	}

	_, err := ParsePlatform("minikube")
	assert.Error(t, err)
	_, err = ParsePlatform("")
	assert.Error(t, err)
}

func TestInstallScriptURLIsPinnedToVersion(t *testing.T) {
	ks := KubeStellarSettings{Version: "0.27.2"}
	assert.Equal(t,
		"https://raw.githubusercontent.com/kubestellar/kubestellar/refs/tags/v0.27.2/scripts/create-kubestellar-demo-env.sh",
		ks.InstallScriptURL())
}
