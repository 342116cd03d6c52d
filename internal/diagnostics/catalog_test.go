package diagnostics

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
)

func healthyRunner() *execkit.FakeRunner {
	runner := execkit.NewFakeRunner()
	runner.Script("kubectl version --client", execkit.Result{Stdout: "Client Version: v1.28.0"})
	runner.Script("docker --version", execkit.Result{Stdout: "Docker version 24.0.5"})
	runner.Script("helm version", execkit.Result{Stdout: "version.BuildInfo{Version:\"v3.12.0\"}"})
	runner.Script("go version", execkit.Result{Stdout: "go version go1.21.0 linux/amd64"})
	runner.Script("kind version", execkit.Result{Stdout: "kind v0.20.0"})
	runner.Script("k3d version", execkit.Result{Stdout: "k3d version v5.6.0"})
	runner.Script("docker ps", execkit.Result{Stdout: "CONTAINER ID"})
	runner.Script("kubectl config get-contexts -o=name", execkit.Result{Stdout: "kind-kubeflex\ncluster1\nwds1\n"})
	runner.Script("kubectl cluster-info", execkit.Result{Stdout: "Kubernetes control plane is running"})
	runner.Script("kubectl get ns wds1-system --ignore-not-found -o=name", execkit.Result{Stdout: "namespace/wds1-system"})
	runner.Script("kubectl get ns its1-system --ignore-not-found -o=name", execkit.Result{Stdout: "namespace/its1-system"})
	runner.Script("lsof -i tcp:9443", execkit.Result{ExitCode: 1})
	runner.Script("df -h /", execkit.Result{Stdout: "Filesystem Size Used Avail Use% Mounted\n/dev/sda1 100G 40G 60G 40% /"})
	runner.Script("free -m", execkit.Result{Stdout: "       total used free shared buff/cache available\nMem: 16000 4000 8000 100 4000 11000"})
	return runner
}

func TestKubeStellarCatalogHealthyEnvironment(t *testing.T) {
	cfg := config.GetDefaultConfig()
	catalog, err := NewKubeStellarCatalog(cfg)
	require.NoError(t, err)

	report := NewEngine(healthyRunner()).Run(context.Background(), catalog)

	assert.Equal(t, probe.StatusOK, report.Overall)
	for _, r := range report.Results {
		assert.Equal(t, probe.StatusOK, r.Status, "probe %s: %s", r.Probe, r.Summary)
	}
}

func TestKubeStellarCatalogMissingRequiredTool(t *testing.T) {
	runner := healthyRunner()
	runner.Script("kubectl version --client", execkit.Result{
		NotFound: true,
		ExitCode: -1,
		Err:      exec.ErrNotFound,
	})

	cfg := config.GetDefaultConfig()
	catalog, err := NewKubeStellarCatalog(cfg)
	require.NoError(t, err)

	report := NewEngine(runner).Run(context.Background(), catalog)
	assert.Equal(t, probe.StatusFailed, report.Overall)

	byName := make(map[string]probe.Result)
	for _, r := range report.Results {
		byName[r.Probe] = r
	}

	kubectl := byName[ProbeKubectl]
	assert.Equal(t, probe.StatusFailed, kubectl.Status)
	assert.Contains(t, kubectl.Remediation, "kubernetes.io")

	// Everything downstream of kubectl is skipped, not failed.
	assert.Equal(t, probe.StatusSkipped, byName[ProbeKubeContexts].Status)
	assert.Equal(t, probe.StatusSkipped, byName[ProbeClusterReach].Status)
	assert.Equal(t, probe.StatusSkipped, byName[ProbeWDSNamespace].Status)

	// The docker chain is unaffected.
	assert.Equal(t, probe.StatusOK, byName[ProbeDockerDaemon].Status)
	assert.Equal(t, probe.StatusOK, byName[ProbeDiskSpace].Status)
}

func TestKubeStellarCatalogMissingOptionalToolDegrades(t *testing.T) {
	runner := healthyRunner()
	runner.Script("kind version", execkit.Result{
		NotFound: true,
		ExitCode: -1,
		Err:      errors.New("executable file not found in $PATH"),
	})

	cfg := config.GetDefaultConfig()
	catalog, err := NewKubeStellarCatalog(cfg)
	require.NoError(t, err)

	report := NewEngine(runner).Run(context.Background(), catalog)
	assert.Equal(t, probe.StatusDegraded, report.Overall)
}

func TestClassifyContexts(t *testing.T) {
	tests := []struct {
		name   string
		result execkit.Result
		want   probe.Status
	}{
		{"compatible contexts found", execkit.Result{Stdout: "kind-kubeflex\nwds1\n"}, probe.StatusOK},
		{"no compatible contexts", execkit.Result{Stdout: "minikube\nprod-cluster\n"}, probe.StatusDegraded},
		{"empty kubeconfig", execkit.Result{Stdout: ""}, probe.StatusDegraded},
		{"command failed", execkit.Result{ExitCode: 1, Stderr: "no config"}, probe.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyContexts(tt.result).Status)
		})
	}
}

func TestClassifyPortConflict(t *testing.T) {
	free := classifyPortConflict(execkit.Result{ExitCode: 1})
	assert.Equal(t, probe.StatusOK, free.Status)

	// lsof exits 0 with output when the port is held.
	held := classifyPortConflict(execkit.Result{ExitCode: 0, Stdout: "COMMAND PID\nkubectl 123"})
	assert.Equal(t, probe.StatusDegraded, held.Status)
	assert.Contains(t, held.Summary, "9443")

	noLsof := classifyPortConflict(execkit.Result{NotFound: true, ExitCode: -1})
	assert.Equal(t, probe.StatusDegraded, noLsof.Status)
}

func TestClassifyDiskSpace(t *testing.T) {
	ok := classifyDiskSpace(execkit.Result{Stdout: "Filesystem Size Used Avail Use% Mounted\n/dev/sda1 100G 40G 60G 40% /"})
	assert.Equal(t, probe.StatusOK, ok.Status)

	full := classifyDiskSpace(execkit.Result{Stdout: "Filesystem Size Used Avail Use% Mounted\n/dev/sda1 100G 95G 5G 95% /"})
	assert.Equal(t, probe.StatusDegraded, full.Status)
	assert.Contains(t, full.Summary, "95%")

	unknown := classifyDiskSpace(execkit.Result{ExitCode: 1})
	assert.Equal(t, probe.StatusDegraded, unknown.Status)
}

func TestClassifyMemory(t *testing.T) {
	ok := classifyMemory(execkit.Result{Stdout: "       total used free shared buff/cache available\nMem: 16000 4000 8000 100 4000 11000"})
	assert.Equal(t, probe.StatusOK, ok.Status)

	low := classifyMemory(execkit.Result{Stdout: "       total used free shared buff/cache available\nMem: 2000 1500 100 50 400 500"})
	assert.Equal(t, probe.StatusDegraded, low.Status)
	assert.Contains(t, low.Summary, "500 MB")
}

func TestParseGoVersion(t *testing.T) {
	tests := []struct {
		output string
		major  int
		minor  int
		ok     bool
	}{
		{"go version go1.21.0 linux/amd64", 1, 21, true},
		{"go version go1.18 darwin/arm64", 1, 18, true},
		{"garbage", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tt := range tests {
		major, minor, ok := parseGoVersion(tt.output)
		assert.Equal(t, tt.ok, ok, tt.output)
		if tt.ok {
			assert.Equal(t, tt.major, major)
			assert.Equal(t, tt.minor, minor)
		}
	}
}

func TestGoToolProbeOldVersionDegrades(t *testing.T) {
	p := goToolProbe(0)
	finding := p.Classify(execkit.Result{Stdout: "go version go1.18 linux/amd64"})
	assert.Equal(t, probe.StatusDegraded, finding.Status)
	assert.Contains(t, finding.Remediation, "1.19")
}
