package config

import "time"

// GetDefaultConfig returns the built-in configuration. User and project
// config files as well as environment variables overlay these values.
func GetDefaultConfig() Config {
	return Config{
		KubeStellar: KubeStellarSettings{
			Version: "0.27.2",
			DocsURL: "https://docs.kubestellar.io/release-0.27.2",
			RepoURL: "https://github.com/kubestellar/kubestellar",
		},
		Diagnostics: DiagnosticsSettings{
			ProbeTimeout:        30 * time.Second,
			ConnectivityTimeout: 30 * time.Second,
			Concurrency:         4,
		},
		Demo: DemoSettings{
			Platform:         PlatformKind,
			Clusters:         []string{"kubeflex", "cluster1", "cluster2"},
			Contexts:         []string{"cluster1", "cluster2"},
			ProvisionTimeout: 30 * time.Minute,
		},
		LogLevel: "INFO",
	}
}
