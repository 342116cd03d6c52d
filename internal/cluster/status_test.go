package cluster

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
)

func scriptNamespaces(runner *execkit.FakeRunner, contextName string, wds1, its1 bool) {
	runner.Script("kubectl cluster-info --context "+contextName, execkit.Result{Stdout: "running"})
	wdsOut := ""
	if wds1 {
		wdsOut = "namespace/wds1-system"
	}
	itsOut := ""
	if its1 {
		itsOut = "namespace/its1-system"
	}
	runner.Script("kubectl get ns wds1-system --context "+contextName+" --ignore-not-found -o=name", execkit.Result{Stdout: wdsOut})
	runner.Script("kubectl get ns its1-system --context "+contextName+" --ignore-not-found -o=name", execkit.Result{Stdout: itsOut})
}

func TestCheckStatusFullyInstalled(t *testing.T) {
	runner := execkit.NewFakeRunner()
	scriptNamespaces(runner, "kind-kubeflex", true, true)

	kube := kubeconfig.NewFakeClient("kind-kubeflex", "prod")
	status := newTestInspector(runner, kube).CheckStatus(context.Background())

	assert.True(t, status.AllReady)
	assert.Equal(t, "kind-kubeflex", status.Context)
	assert.True(t, status.WDS1Namespace)
	assert.True(t, status.ITS1Namespace)
	assert.Contains(t, status.Message, "ready")
}

func TestCheckStatusPartialInstallation(t *testing.T) {
	runner := execkit.NewFakeRunner()
	scriptNamespaces(runner, "kind-kubeflex", true, false)

	kube := kubeconfig.NewFakeClient("kind-kubeflex")
	status := newTestInspector(runner, kube).CheckStatus(context.Background())

	assert.False(t, status.AllReady)
	assert.True(t, status.ContextFound)
	assert.True(t, status.WDS1Namespace)
	assert.False(t, status.ITS1Namespace)
	assert.Contains(t, status.Message, "its1-system")
}

func TestCheckStatusPrefersFullyReadyContext(t *testing.T) {
	runner := execkit.NewFakeRunner()
	scriptNamespaces(runner, "kind-partial", true, false)
	scriptNamespaces(runner, "k3d-complete", true, true)

	kube := kubeconfig.NewFakeClient("kind-partial", "k3d-complete")
	status := newTestInspector(runner, kube).CheckStatus(context.Background())

	assert.True(t, status.AllReady)
	assert.Equal(t, "k3d-complete", status.Context)
}

func TestCheckStatusNoCompatibleContexts(t *testing.T) {
	kube := kubeconfig.NewFakeClient("prod", "staging")
	status := newTestInspector(execkit.NewFakeRunner(), kube).CheckStatus(context.Background())

	assert.False(t, status.AllReady)
	assert.False(t, status.ContextFound)
	assert.Empty(t, status.CompatibleContexts)
	assert.Contains(t, status.Message, "No compatible")
}

func TestCheckStatusUnreachableContexts(t *testing.T) {
	runner := execkit.NewFakeRunner()
	runner.Default = execkit.Result{ExitCode: 1, Stderr: "connection refused"}

	kube := kubeconfig.NewFakeClient("kind-kubeflex")
	status := newTestInspector(runner, kube).CheckStatus(context.Background())

	assert.False(t, status.AllReady)
	assert.False(t, status.ContextFound)
	assert.Equal(t, []string{"kind-kubeflex"}, status.CompatibleContexts)
}

func TestCheckStatusKubeconfigError(t *testing.T) {
	kube := kubeconfig.NewFakeClient()
	kube.Err = assert.AnError

	status := newTestInspector(execkit.NewFakeRunner(), kube).CheckStatus(context.Background())

	assert.False(t, status.AllReady)
	assert.Contains(t, status.Message, "Error reading kubeconfig")
}
