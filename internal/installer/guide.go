// Package installer holds the static installation guidance for KubeStellar.
// The content is derived from configuration (release version, docs URL) but
// involves no probing; pairing it with a live prerequisites report is the
// caller's job.
package installer

import (
	"fmt"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
)

// Method describes one supported installation path.
type Method struct {
	Description string `json:"description"`
	ScriptURL   string `json:"script_url,omitempty"`
	Chart       string `json:"chart,omitempty"`
	Version     string `json:"version,omitempty"`
	Usage       string `json:"usage,omitempty"`
}

// Guide is the full installation guidance document.
type Guide struct {
	Title              string            `json:"title"`
	Version            string            `json:"version"`
	Documentation      string            `json:"documentation"`
	QuickStart         string            `json:"quick_start"`
	Methods            map[string]Method `json:"installation_methods"`
	Requirements       map[string]string `json:"requirements"`
	SupportedPlatforms []string          `json:"supported_platforms"`
	RequiredPorts      []int             `json:"required_ports"`
	NextSteps          []string          `json:"next_steps"`
}

// BuildGuide assembles the guidance for the configured release.
func BuildGuide(cfg config.Config) Guide {
	ks := cfg.KubeStellar
	return Guide{
		Title:         "KubeStellar Installation Guide",
		Version:       ks.Version,
		Documentation: fmt.Sprintf("%s/direct/user-guide-intro/", ks.DocsURL),
		QuickStart:    fmt.Sprintf("%s/Getting-Started/quickstart/", ks.DocsURL),
		Methods: map[string]Method{
			"demo_script": {
				Description: "Automated demo environment setup",
				ScriptURL:   ks.InstallScriptURL(),
				Usage:       "curl -s <script_url> | bash -s -- --platform kind",
			},
			"helm_chart": {
				Description: "Manual installation using Helm",
				Chart:       ks.CoreChartRef(),
				Version:     ks.Version,
			},
		},
		Requirements: map[string]string{
			"kubernetes":        "kubectl v1.23-1.25+",
			"container_runtime": "Docker or Podman",
			"helm":              "Helm 3.x",
			"go":                "Go 1.19+",
		},
		SupportedPlatforms: []string{string(config.PlatformKind), string(config.PlatformK3d)},
		RequiredPorts:      []int{9443},
		NextSteps: []string{
			"Run check_prerequisites to verify system requirements",
			"Choose an installation method (the demo script is recommended for a first install)",
			"Follow the installation guide step by step",
		},
	}
}
