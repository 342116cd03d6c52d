package config

import (
	"fmt"
	"time"
)

// Platform selects which local-cluster provisioning tool backs the demo
// environment plans.
type Platform string

const (
	PlatformKind Platform = "kind"
	PlatformK3d  Platform = "k3d"
)

// ParsePlatform validates a platform selector.
func ParsePlatform(s string) (Platform, error) {
	switch Platform(s) {
	case PlatformKind:
		return PlatformKind, nil
	case PlatformK3d:
		return PlatformK3d, nil
	default:
		return "", fmt.Errorf("unsupported platform %q: use %q or %q", s, PlatformKind, PlatformK3d)
	}
}

// Config is the top-level configuration for kubestellar-mcp. All fields are
// read-only once loaded; the engine and orchestrator never mutate it.
type Config struct {
	KubeStellar KubeStellarSettings `yaml:"kubestellar"`
	Diagnostics DiagnosticsSettings `yaml:"diagnostics"`
	Demo        DemoSettings        `yaml:"demo"`
	LogLevel    string              `yaml:"logLevel,omitempty"`
}

// KubeStellarSettings locates the KubeStellar release this tool targets.
type KubeStellarSettings struct {
	Version string `yaml:"version,omitempty"`
	DocsURL string `yaml:"docsUrl,omitempty"`
	RepoURL string `yaml:"repoUrl,omitempty"`
}

// InstallScriptURL returns the pinned demo-environment installer script for
// the configured release.
func (k KubeStellarSettings) InstallScriptURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/kubestellar/kubestellar/refs/tags/v%s/scripts/create-kubestellar-demo-env.sh", k.Version)
}

// CoreChartRef returns the OCI reference of the Helm core chart.
func (k KubeStellarSettings) CoreChartRef() string {
	return "oci://ghcr.io/kubestellar/kubestellar/core-chart"
}

// DiagnosticsSettings tunes the aggregation engine.
type DiagnosticsSettings struct {
	ProbeTimeout        time.Duration `yaml:"probeTimeout,omitempty"`        // default per-probe timeout
	ConnectivityTimeout time.Duration `yaml:"connectivityTimeout,omitempty"` // cluster reachability probes
	Concurrency         int           `yaml:"concurrency,omitempty"`         // probes in flight per batch
	Verbose             bool          `yaml:"verbose,omitempty"`             // long-form remediation text
}

// DemoSettings describes the demo environment the lifecycle plans manage.
type DemoSettings struct {
	Platform         Platform      `yaml:"platform,omitempty"`
	Clusters         []string      `yaml:"clusters,omitempty"` // clusters the installer provisions
	Contexts         []string      `yaml:"contexts,omitempty"` // kubeconfig contexts removed on teardown
	ProvisionTimeout time.Duration `yaml:"provisionTimeout,omitempty"`
}
