// Package cluster collects per-context information about KubeStellar
// clusters: reachability, nodes, namespaces, and the KubeStellar custom
// resources present. It combines kubeconfig access through client-go with
// kubectl invocations for the live cluster state.
package cluster

import (
	"context"
	"strings"
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// CompatibleMarkers identify context names that can belong to a KubeStellar
// installation.
var CompatibleMarkers = []string{"kubeflex", "kind", "k3d", "wds", "its"}

// controlNamespaces are the namespaces a complete installation creates.
var controlNamespaces = []string{"wds1-system", "its1-system", "kubeflex-system"}

// Resources lists the KubeStellar custom resources found in one cluster.
type Resources struct {
	WorkloadDefinitionSpaces []string `json:"workload_definition_spaces"`
	ManagedClusters          []string `json:"managed_clusters"`
	BindingPolicies          []string `json:"binding_policies"`
}

// Info describes one cluster context.
type Info struct {
	Context               string          `json:"context"`
	Accessible            bool            `json:"accessible"`
	Nodes                 []string        `json:"nodes,omitempty"`
	Namespaces            []string        `json:"namespaces,omitempty"`
	KubeStellarNamespaces map[string]bool `json:"kubestellar_namespaces,omitempty"`
	Resources             *Resources      `json:"kubestellar_resources,omitempty"`
}

// Summary aggregates counters across all inspected contexts.
type Summary struct {
	TotalContexts      int `json:"total_contexts"`
	CompatibleContexts int `json:"kubestellar_contexts"`
	AccessibleClusters int `json:"accessible_clusters"`
}

// Overview is the full cluster-info result.
type Overview struct {
	Clusters map[string]Info `json:"clusters"`
	Summary  Summary         `json:"summary"`
	Error    string          `json:"error,omitempty"`
}

// Inspector gathers cluster information. It is read-only: no inspection ever
// mutates cluster or kubeconfig state.
type Inspector struct {
	runner  execkit.Runner
	kube    kubeconfig.Client
	timeout time.Duration
}

// NewInspector creates an inspector with the configured per-command timeout.
func NewInspector(runner execkit.Runner, kube kubeconfig.Client, cfg config.Config) *Inspector {
	return &Inspector{
		runner:  runner,
		kube:    kube,
		timeout: cfg.Diagnostics.ConnectivityTimeout,
	}
}

// Overview inspects either the single named context or, when contextName is
// empty, every KubeStellar-compatible context in the kubeconfig. Failures per
// context are recorded in the overview, not returned as errors.
func (i *Inspector) Overview(ctx context.Context, contextName string) Overview {
	overview := Overview{Clusters: make(map[string]Info)}

	contexts, err := i.kube.Contexts()
	if err != nil {
		overview.Error = err.Error()
		return overview
	}
	overview.Summary.TotalContexts = len(contexts)

	if contextName != "" {
		found := false
		for _, c := range contexts {
			if c == contextName {
				found = true
				break
			}
		}
		if !found {
			overview.Error = "context '" + contextName + "' not found"
			return overview
		}
		info := i.inspect(ctx, contextName)
		overview.Clusters[contextName] = info
		if info.Accessible {
			overview.Summary.AccessibleClusters++
		}
		return overview
	}

	for _, name := range kubeconfig.FilterCompatible(contexts, CompatibleMarkers) {
		overview.Summary.CompatibleContexts++
		info := i.inspect(ctx, name)
		overview.Clusters[name] = info
		if info.Accessible {
			overview.Summary.AccessibleClusters++
		}
	}
	return overview
}

// inspect gathers everything about one context. An unreachable cluster short
// circuits to Accessible=false; the remaining lookups would only add noise.
func (i *Inspector) inspect(ctx context.Context, name string) Info {
	info := Info{Context: name}

	r := i.runner.Run(ctx, cmdClusterInfo(name, i.timeout))
	if !r.Ok() {
		logging.Debug("cluster", "Context %s is not reachable", name)
		return info
	}
	info.Accessible = true

	info.Nodes = i.nameList(ctx, name, "nodes")
	info.Namespaces = i.nameList(ctx, name, "namespaces")

	info.KubeStellarNamespaces = make(map[string]bool, len(controlNamespaces))
	for _, ns := range controlNamespaces {
		info.KubeStellarNamespaces[ns] = i.namespaceExists(ctx, name, ns)
	}

	info.Resources = &Resources{
		WorkloadDefinitionSpaces: i.resourceList(ctx, name, "workloaddefinitionspaces"),
		ManagedClusters:          i.resourceList(ctx, name, "managedclusters"),
		BindingPolicies:          i.resourceList(ctx, name, "bindingpolicies"),
	}
	return info
}

func (i *Inspector) nameList(ctx context.Context, contextName, kind string) []string {
	r := i.runner.Run(ctx, execkit.Command{
		Binary:  "kubectl",
		Args:    []string{"get", kind, "--context", contextName, "-o=name"},
		Timeout: i.timeout,
	})
	if !r.Ok() {
		return nil
	}
	return splitLines(r.Stdout)
}

func (i *Inspector) resourceList(ctx context.Context, contextName, kind string) []string {
	r := i.runner.Run(ctx, execkit.Command{
		Binary:  "kubectl",
		Args:    []string{"get", kind, "--context", contextName, "-o=name", "--ignore-not-found"},
		Timeout: i.timeout,
	})
	if !r.Ok() {
		return nil
	}
	return splitLines(r.Stdout)
}

func (i *Inspector) namespaceExists(ctx context.Context, contextName, namespace string) bool {
	r := i.runner.Run(ctx, execkit.Command{
		Binary:  "kubectl",
		Args:    []string{"get", "ns", namespace, "--context", contextName, "--ignore-not-found", "-o=name"},
		Timeout: i.timeout,
	})
	return r.Ok() && strings.TrimSpace(r.Stdout) != ""
}

func cmdClusterInfo(contextName string, timeout time.Duration) execkit.Command {
	return execkit.Command{
		Binary:  "kubectl",
		Args:    []string{"cluster-info", "--context", contextName},
		Timeout: timeout,
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
