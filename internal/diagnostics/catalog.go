package diagnostics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
)

// Probe names, referenced by dependency declarations and tests.
const (
	ProbeKubectl      = "kubectl"
	ProbeDocker       = "docker"
	ProbeHelm         = "helm"
	ProbeGo           = "go"
	ProbeKind         = "kind"
	ProbeK3d          = "k3d"
	ProbeDockerDaemon = "docker-daemon"
	ProbeKubeContexts = "kubeconfig-contexts"
	ProbeClusterReach = "cluster-connectivity"
	ProbeWDSNamespace = "wds1-namespace"
	ProbeITSNamespace = "its1-namespace"
	ProbePortConflict = "port-9443"
	ProbeDiskSpace    = "disk-space"
	ProbeMemory       = "memory"
)

// compatibleContextMarkers identify kubeconfig contexts that can host a
// KubeStellar installation.
var compatibleContextMarkers = []string{"kubeflex", "kind", "k3d", "wds", "its"}

// NewKubeStellarCatalog builds the full diagnostic catalog for a KubeStellar
// environment: tooling presence, then cluster connectivity, then component
// health, then resource inventory. The catalog is static apart from timeouts
// taken from configuration.
func NewKubeStellarCatalog(cfg config.Config) (*probe.Catalog, error) {
	t := cfg.Diagnostics.ProbeTimeout
	ct := cfg.Diagnostics.ConnectivityTimeout

	return probe.NewCatalog(
		// --- tooling presence ---
		requiredTool(ProbeKubectl, t, []string{"version", "--client"},
			"Install kubectl: https://kubernetes.io/docs/tasks/tools/install-kubectl/"),
		requiredTool(ProbeDocker, t, []string{"--version"},
			"Install Docker: https://docs.docker.com/get-docker/ or Podman: https://podman.io/getting-started/installation"),
		requiredTool(ProbeHelm, t, []string{"version"},
			"Install Helm: https://helm.sh/docs/intro/install/"),
		goToolProbe(t),
		optionalTool(ProbeKind, t, []string{"version"},
			"Install kind: https://kind.sigs.k8s.io/docs/user/quick-start/#installation"),
		optionalTool(ProbeK3d, t, []string{"version"},
			"Install k3d: https://k3d.io/v5.4.6/#installation"),

		// --- cluster connectivity ---
		probe.Probe{
			Name:     ProbeDockerDaemon,
			Category: probe.CategoryConnectivity,
			Requires: []string{ProbeDocker},
			Command:  execkit.Command{Binary: "docker", Args: []string{"ps"}, Timeout: t},
			Classify: func(r execkit.Result) probe.Finding {
				if r.Ok() {
					return probe.Finding{Status: probe.StatusOK, Summary: "Docker daemon is running"}
				}
				return probe.Finding{
					Status:      probe.StatusFailed,
					Summary:     "Docker daemon is not running or not accessible",
					Remediation: "Start the Docker daemon: sudo systemctl start docker\nOn macOS, start Docker Desktop instead.",
				}
			},
		},
		probe.Probe{
			Name:     ProbeKubeContexts,
			Category: probe.CategoryConnectivity,
			Requires: []string{ProbeKubectl},
			Command:  execkit.Command{Binary: "kubectl", Args: []string{"config", "get-contexts", "-o=name"}, Timeout: t},
			Classify: classifyContexts,
		},
		probe.Probe{
			Name:     ProbeClusterReach,
			Category: probe.CategoryConnectivity,
			Requires: []string{ProbeKubeContexts},
			Command:  execkit.Command{Binary: "kubectl", Args: []string{"cluster-info"}, Timeout: ct},
			Classify: func(r execkit.Result) probe.Finding {
				if r.Ok() {
					return probe.Finding{Status: probe.StatusOK, Summary: "current cluster is reachable"}
				}
				return probe.Finding{
					Status:      probe.StatusFailed,
					Summary:     "cannot connect to the current cluster",
					Remediation: "Check that the cluster is running and your kubeconfig points at it.\nIf the demo environment was never created, run create_demo_environment first.",
				}
			},
		},

		// --- component health ---
		namespaceProbe(ProbeWDSNamespace, "wds1-system", t),
		namespaceProbe(ProbeITSNamespace, "its1-system", t),

		// --- resource inventory ---
		probe.Probe{
			Name:     ProbePortConflict,
			Category: probe.CategoryInventory,
			Requires: []string{ProbeDockerDaemon},
			Command:  execkit.Command{Binary: "lsof", Args: []string{"-i", "tcp:9443"}, Timeout: t},
			Classify: classifyPortConflict,
		},
		probe.Probe{
			Name:     ProbeDiskSpace,
			Category: probe.CategoryInventory,
			Requires: []string{ProbeDockerDaemon},
			Command:  execkit.Command{Binary: "df", Args: []string{"-h", "/"}, Timeout: t},
			Classify: classifyDiskSpace,
		},
		probe.Probe{
			Name:     ProbeMemory,
			Category: probe.CategoryInventory,
			Requires: []string{ProbeDockerDaemon},
			Command:  execkit.Command{Binary: "free", Args: []string{"-m"}, Timeout: t},
			Classify: classifyMemory,
		},
	)
}

// requiredTool builds a tooling-presence probe whose absence fails the report.
func requiredTool(name string, timeout time.Duration, args []string, installHint string) probe.Probe {
	return probe.Probe{
		Name:     name,
		Category: probe.CategoryTooling,
		Command:  execkit.Command{Binary: name, Args: args, Timeout: timeout},
		Classify: func(r execkit.Result) probe.Finding {
			if r.NotFound {
				return probe.Finding{
					Status:      probe.StatusFailed,
					Summary:     fmt.Sprintf("%s is not installed or not in PATH", name),
					Remediation: installHint,
				}
			}
			if !r.Ok() {
				return probe.Finding{
					Status:      probe.StatusFailed,
					Summary:     fmt.Sprintf("%s is present but not working", name),
					Remediation: fmt.Sprintf("Run '%s %s' manually to see the underlying error.\n%s", name, strings.Join(args, " "), installHint),
				}
			}
			return probe.Finding{Status: probe.StatusOK, Summary: firstLine(r.Stdout)}
		},
	}
}

// optionalTool builds a tooling probe whose absence only degrades the report.
func optionalTool(name string, timeout time.Duration, args []string, installHint string) probe.Probe {
	p := requiredTool(name, timeout, args, installHint)
	required := p.Classify
	p.Classify = func(r execkit.Result) probe.Finding {
		finding := required(r)
		if finding.Status == probe.StatusFailed {
			finding.Status = probe.StatusDegraded
		}
		return finding
	}
	return p
}

// goToolProbe checks for Go and degrades on versions older than 1.19, the
// minimum the KubeStellar build tooling supports.
func goToolProbe(timeout time.Duration) probe.Probe {
	return probe.Probe{
		Name:     ProbeGo,
		Category: probe.CategoryTooling,
		Command:  execkit.Command{Binary: "go", Args: []string{"version"}, Timeout: timeout},
		Classify: func(r execkit.Result) probe.Finding {
			if !r.Ok() {
				return probe.Finding{
					Status:      probe.StatusDegraded,
					Summary:     "go is not installed or not in PATH",
					Remediation: "Install Go 1.19+: https://golang.org/doc/install",
				}
			}
			major, minor, ok := parseGoVersion(r.Stdout)
			if ok && major == 1 && minor < 19 {
				return probe.Finding{
					Status:      probe.StatusDegraded,
					Summary:     fmt.Sprintf("Go version is too old: %s", firstLine(r.Stdout)),
					Remediation: "Upgrade to Go 1.19 or newer: https://golang.org/doc/install",
				}
			}
			return probe.Finding{Status: probe.StatusOK, Summary: firstLine(r.Stdout)}
		},
	}
}

// namespaceProbe checks for one KubeStellar control namespace.
func namespaceProbe(name, namespace string, timeout time.Duration) probe.Probe {
	return probe.Probe{
		Name:     name,
		Category: probe.CategoryComponents,
		Requires: []string{ProbeClusterReach},
		Command: execkit.Command{
			Binary:  "kubectl",
			Args:    []string{"get", "ns", namespace, "--ignore-not-found", "-o=name"},
			Timeout: timeout,
		},
		Classify: func(r execkit.Result) probe.Finding {
			if !r.Ok() {
				return probe.Finding{
					Status:      probe.StatusFailed,
					Summary:     fmt.Sprintf("could not query namespace %s", namespace),
					Remediation: "Check cluster access with 'kubectl get ns' and retry.",
				}
			}
			if strings.TrimSpace(r.Stdout) == "" {
				return probe.Finding{
					Status:      probe.StatusDegraded,
					Summary:     fmt.Sprintf("namespace %s is missing", namespace),
					Remediation: fmt.Sprintf("Complete the KubeStellar installation to create %s.\nThe demo environment script creates it automatically.", namespace),
				}
			}
			return probe.Finding{Status: probe.StatusOK, Summary: fmt.Sprintf("namespace %s exists", namespace)}
		},
	}
}

func classifyContexts(r execkit.Result) probe.Finding {
	if !r.Ok() {
		return probe.Finding{
			Status:      probe.StatusFailed,
			Summary:     "could not list kubeconfig contexts",
			Remediation: "Check that a kubeconfig exists (~/.kube/config) and is readable.",
		}
	}
	var compatible []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		ctx := strings.TrimSpace(line)
		if ctx == "" {
			continue
		}
		for _, marker := range compatibleContextMarkers {
			if strings.Contains(ctx, marker) {
				compatible = append(compatible, ctx)
				break
			}
		}
	}
	if len(compatible) == 0 {
		return probe.Finding{
			Status:      probe.StatusDegraded,
			Summary:     "no KubeStellar-compatible contexts found",
			Remediation: "No contexts containing 'kubeflex', 'kind', 'k3d', 'wds', or 'its' were found.\nRun the KubeStellar installation or create_demo_environment to provision one.",
		}
	}
	return probe.Finding{
		Status:  probe.StatusOK,
		Summary: fmt.Sprintf("found %d compatible context(s): %s", len(compatible), strings.Join(compatible, ", ")),
	}
}

func classifyPortConflict(r execkit.Result) probe.Finding {
	if r.NotFound {
		return probe.Finding{
			Status:      probe.StatusDegraded,
			Summary:     "cannot check port 9443: lsof is not installed",
			Remediation: "Install lsof to enable port conflict checks.",
		}
	}
	// lsof exits 0 when something holds the port and non-zero when free.
	if r.ExitCode == 0 && strings.TrimSpace(r.Stdout) != "" {
		return probe.Finding{
			Status:      probe.StatusDegraded,
			Summary:     "port 9443 is already in use",
			Remediation: "Stop the service using port 9443 or configure KubeStellar to use a different port.\nFind the holder with: lsof -i tcp:9443",
		}
	}
	return probe.Finding{Status: probe.StatusOK, Summary: "port 9443 is free"}
}

func classifyDiskSpace(r execkit.Result) probe.Finding {
	if !r.Ok() {
		return probe.Finding{
			Status:      probe.StatusDegraded,
			Summary:     "could not determine disk usage",
			Remediation: "Run 'df -h /' manually to inspect free disk space.",
		}
	}
	lines := strings.Split(strings.TrimSpace(r.Stdout), "\n")
	if len(lines) > 1 {
		fields := strings.Fields(lines[1])
		if len(fields) >= 5 {
			usage := strings.TrimSuffix(fields[4], "%")
			if pct, err := strconv.Atoi(usage); err == nil && pct > 90 {
				return probe.Finding{
					Status:      probe.StatusDegraded,
					Summary:     fmt.Sprintf("disk usage is high: %d%%", pct),
					Remediation: "Free up disk space before provisioning the demo environment.\nLocal cluster images need several gigabytes.",
				}
			}
		}
	}
	return probe.Finding{Status: probe.StatusOK, Summary: "disk space looks sufficient"}
}

func classifyMemory(r execkit.Result) probe.Finding {
	if !r.Ok() {
		return probe.Finding{
			Status:      probe.StatusDegraded,
			Summary:     "could not determine available memory",
			Remediation: "Run 'free -m' manually to inspect available memory.",
		}
	}
	for _, line := range strings.Split(r.Stdout, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		// free -m: Mem: total used free shared buff/cache available
		if len(fields) >= 7 {
			if available, err := strconv.Atoi(fields[6]); err == nil && available < 1000 {
				return probe.Finding{
					Status:      probe.StatusDegraded,
					Summary:     fmt.Sprintf("available memory is low: %d MB", available),
					Remediation: "Free up memory before provisioning; the demo clusters need at least 1 GB available.",
				}
			}
		}
	}
	return probe.Finding{Status: probe.StatusOK, Summary: "available memory looks sufficient"}
}

func parseGoVersion(output string) (major, minor int, ok bool) {
	// "go version go1.21.0 linux/amd64"
	fields := strings.Fields(output)
	if len(fields) < 3 || !strings.HasPrefix(fields[2], "go") {
		return 0, 0, false
	}
	parts := strings.Split(strings.TrimPrefix(fields[2], "go"), ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(parts[0])
	minor, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
