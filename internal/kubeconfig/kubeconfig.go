// Package kubeconfig reads and edits the local kubeconfig through the
// client-go clientcmd machinery instead of shelling out to kubectl, so the
// full config (auth info, extensions) is always preserved on writes.
package kubeconfig

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/client-go/tools/clientcmd"
)

// Client is the kubeconfig surface the cluster inspector and the teardown
// steps need. Tests substitute an in-memory fake.
type Client interface {
	// Contexts returns all context names, sorted.
	Contexts() ([]string, error)
	// CurrentContext returns the active context name, or an error when unset.
	CurrentContext() (string, error)
	// RemoveContexts deletes the named contexts from the kubeconfig file and
	// returns the ones actually removed. Missing contexts are not an error;
	// teardown must tolerate "already removed".
	RemoveContexts(names ...string) ([]string, error)
}

type fileClient struct{}

// NewClient returns a Client backed by the default kubeconfig chain
// (KUBECONFIG, then ~/.kube/config).
func NewClient() Client {
	return &fileClient{}
}

func (c *fileClient) Contexts() ([]string, error) {
	pathOptions := clientcmd.NewDefaultPathOptions()
	config, err := pathOptions.GetStartingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	names := make([]string, 0, len(config.Contexts))
	for name := range config.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *fileClient) CurrentContext() (string, error) {
	pathOptions := clientcmd.NewDefaultPathOptions()
	config, err := pathOptions.GetStartingConfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if config.CurrentContext == "" {
		return "", fmt.Errorf("current kubeconfig context is not set")
	}
	return config.CurrentContext, nil
}

func (c *fileClient) RemoveContexts(names ...string) ([]string, error) {
	pathOptions := clientcmd.NewDefaultPathOptions()
	config, err := pathOptions.GetStartingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	var removed []string
	for _, name := range names {
		if _, exists := config.Contexts[name]; !exists {
			continue
		}
		delete(config.Contexts, name)
		if config.CurrentContext == name {
			config.CurrentContext = ""
		}
		removed = append(removed, name)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	kubeconfigFilePath := pathOptions.GetDefaultFilename()
	if pathOptions.IsExplicitFile() {
		kubeconfigFilePath = pathOptions.GetExplicitFile()
	}
	if err := clientcmd.WriteToFile(*config, kubeconfigFilePath); err != nil {
		return nil, fmt.Errorf("failed to write updated kubeconfig to '%s': %w", kubeconfigFilePath, err)
	}
	return removed, nil
}

// FilterCompatible returns the contexts whose names contain one of the given
// markers (e.g. kubeflex, kind, k3d, wds, its).
func FilterCompatible(contexts []string, markers []string) []string {
	var compatible []string
	for _, ctx := range contexts {
		for _, marker := range markers {
			if strings.Contains(ctx, marker) {
				compatible = append(compatible, ctx)
				break
			}
		}
	}
	return compatible
}
