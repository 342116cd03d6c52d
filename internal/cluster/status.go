package cluster

import (
	"context"
	"fmt"
	"strings"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
)

// statusMarkers identify contexts that can host the KubeStellar control
// plane; wds/its contexts are views into it, not hosts.
var statusMarkers = []string{"kubeflex", "kind", "k3d"}

// requiredNamespaces must both exist for an installation to count as ready.
var requiredNamespaces = []string{"wds1-system", "its1-system"}

// InstallStatus is the readiness verdict for a KubeStellar installation.
type InstallStatus struct {
	Context            string   `json:"context"`
	ContextFound       bool     `json:"context_found"`
	WDS1Namespace      bool     `json:"wds1_namespace"`
	ITS1Namespace      bool     `json:"its1_namespace"`
	AllReady           bool     `json:"all_ready"`
	Message            string   `json:"message"`
	CompatibleContexts []string `json:"compatible_contexts"`
}

// CheckStatus looks for a compatible, reachable context carrying both
// KubeStellar control namespaces. It never returns an error; problems end up
// in the Message field so the caller always has a renderable status.
func (i *Inspector) CheckStatus(ctx context.Context) InstallStatus {
	status := InstallStatus{
		Message: "No compatible KubeStellar context found",
	}

	contexts, err := i.kube.Contexts()
	if err != nil {
		status.Message = fmt.Sprintf("Error reading kubeconfig: %v", err)
		return status
	}

	compatible := kubeconfig.FilterCompatible(contexts, statusMarkers)
	status.CompatibleContexts = compatible
	if len(compatible) == 0 {
		status.Message = "No compatible KubeStellar contexts found. Looking for contexts containing 'kubeflex', 'kind', or 'k3d'"
		return status
	}

	for _, name := range compatible {
		r := i.runner.Run(ctx, cmdClusterInfo(name, i.timeout))
		if !r.Ok() {
			continue
		}

		wds1 := i.namespaceExists(ctx, name, requiredNamespaces[0])
		its1 := i.namespaceExists(ctx, name, requiredNamespaces[1])

		if wds1 && its1 {
			return InstallStatus{
				Context:            name,
				ContextFound:       true,
				WDS1Namespace:      true,
				ITS1Namespace:      true,
				AllReady:           true,
				Message:            fmt.Sprintf("KubeStellar ready on context %s with all required namespaces", name),
				CompatibleContexts: compatible,
			}
		}

		if !status.ContextFound {
			var missing []string
			if !wds1 {
				missing = append(missing, requiredNamespaces[0])
			}
			if !its1 {
				missing = append(missing, requiredNamespaces[1])
			}
			status.Context = name
			status.ContextFound = true
			status.WDS1Namespace = wds1
			status.ITS1Namespace = its1
			status.Message = fmt.Sprintf("Compatible context %s found, but missing namespaces: %s", name, strings.Join(missing, ", "))
		}
	}

	return status
}
