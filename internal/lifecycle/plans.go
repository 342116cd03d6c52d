package lifecycle

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// PlanDeps are the collaborators plan steps execute against.
type PlanDeps struct {
	Runner execkit.Runner
	Kube   kubeconfig.Client
	Config config.Config
}

const fetchTimeout = 2 * time.Minute

// NewCreateDemoPlan builds the provisioning plan for the KubeStellar demo
// environment on the given platform. Steps:
//
//  1. verify-platform: platform binary and container runtime present
//  2. fetch-installer: download the pinned demo script to a temp file
//  3. provision-clusters: run the script (this is the long one)
//  4. verify-contexts: expected kubeconfig contexts exist
//
// Steps 1 and 4 are pure checks and deliberately carry no compensation.
func NewCreateDemoPlan(deps PlanDeps, platform config.Platform) (*Plan, error) {
	if _, err := config.ParsePlatform(string(platform)); err != nil {
		return nil, err
	}
	cfg := deps.Config

	return NewPlan("create-demo-environment",
		Step{
			Name: "verify-platform",
			Run: func(ctx context.Context, env *Env) error {
				env.Platform = platform
				r := deps.Runner.Run(ctx, execkit.Command{
					Binary:  string(platform),
					Args:    []string{"version"},
					Timeout: cfg.Diagnostics.ProbeTimeout,
				})
				if !r.Ok() {
					return fmt.Errorf("%s is not installed or not accessible", platform)
				}
				r = deps.Runner.Run(ctx, execkit.Command{
					Binary:  "docker",
					Args:    []string{"ps"},
					Timeout: cfg.Diagnostics.ProbeTimeout,
				})
				if !r.Ok() {
					return fmt.Errorf("Docker is not running or not accessible")
				}
				return nil
			},
		},
		Step{
			Name: "fetch-installer",
			Run: func(ctx context.Context, env *Env) error {
				scriptURL := cfg.KubeStellar.InstallScriptURL()
				r := deps.Runner.Run(ctx, execkit.Command{
					Binary:  "curl",
					Args:    []string{"-s", "--fail", scriptURL},
					Timeout: fetchTimeout,
				})
				if !r.Ok() {
					return fmt.Errorf("failed to download demo script from %s: %s", scriptURL, strings.TrimSpace(r.Stderr))
				}
				f, err := os.CreateTemp("", "kubestellar-demo-*.sh")
				if err != nil {
					return fmt.Errorf("failed to create temp script file: %w", err)
				}
				if _, err := f.WriteString(r.Stdout); err != nil {
					f.Close()
					return fmt.Errorf("failed to write demo script: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to close demo script: %w", err)
				}
				if err := os.Chmod(f.Name(), 0o755); err != nil {
					return fmt.Errorf("failed to mark demo script executable: %w", err)
				}
				env.InstallerPath = f.Name()
				return nil
			},
			Compensate: func(ctx context.Context, env *Env) error {
				return removeInstaller(env)
			},
		},
		Step{
			Name: "provision-clusters",
			Run: func(ctx context.Context, env *Env) error {
				r := deps.Runner.Run(ctx, execkit.Command{
					Binary:  "bash",
					Args:    []string{env.InstallerPath, "--platform", string(platform)},
					Timeout: cfg.Demo.ProvisionTimeout,
				})
				if !r.Ok() {
					// The script may have created some clusters before dying;
					// its own rollback deletes them so the failed step leaves
					// nothing behind.
					if err := deleteClusters(context.WithoutCancel(ctx), deps.Runner, platform, cfg.Demo.Clusters, cfg.Diagnostics.ProbeTimeout); err != nil {
						logging.Warn("lifecycle", "Cleanup after failed provisioning incomplete: %v", err)
					}
					if r.TimedOut {
						return fmt.Errorf("demo environment provisioning timed out after %s", cfg.Demo.ProvisionTimeout)
					}
					return fmt.Errorf("demo script failed with exit code %d: %s", r.ExitCode, lastLines(r.Stderr, 5))
				}
				env.Clusters = append([]string(nil), cfg.Demo.Clusters...)
				env.Contexts = append([]string(nil), cfg.Demo.Contexts...)
				// The script is single-use; drop it now rather than waiting
				// for a rollback that will never come on the happy path.
				if err := removeInstaller(env); err != nil {
					logging.Warn("lifecycle", "Could not remove installer script: %v", err)
				}
				return nil
			},
			Compensate: func(ctx context.Context, env *Env) error {
				return deleteClusters(ctx, deps.Runner, platform, cfg.Demo.Clusters, cfg.Diagnostics.ProbeTimeout)
			},
		},
		Step{
			Name: "verify-contexts",
			Run: func(ctx context.Context, env *Env) error {
				existing, err := deps.Kube.Contexts()
				if err != nil {
					return fmt.Errorf("could not read kubeconfig after provisioning: %w", err)
				}
				present := make(map[string]bool, len(existing))
				for _, c := range existing {
					present[c] = true
				}
				var missing []string
				for _, want := range cfg.Demo.Contexts {
					if !present[want] {
						missing = append(missing, want)
					}
				}
				if len(missing) > 0 {
					return fmt.Errorf("provisioning finished but contexts are missing from kubeconfig: %s", strings.Join(missing, ", "))
				}
				return nil
			},
		},
	)
}

// NewDestroyDemoPlan builds the teardown plan: delete each demo cluster, then
// remove the leftover kubeconfig contexts. Every step tolerates "already
// removed", so destroying an absent environment succeeds cleanly. Teardown
// steps have no compensations: deletion is not undone.
func NewDestroyDemoPlan(deps PlanDeps, platform config.Platform) (*Plan, error) {
	if _, err := config.ParsePlatform(string(platform)); err != nil {
		return nil, err
	}
	cfg := deps.Config

	steps := make([]Step, 0, len(cfg.Demo.Clusters)+1)
	for _, cluster := range cfg.Demo.Clusters {
		cluster := cluster
		steps = append(steps, Step{
			Name: "delete-cluster-" + cluster,
			Run: func(ctx context.Context, env *Env) error {
				env.Platform = platform
				return deleteClusters(ctx, deps.Runner, platform, []string{cluster}, cfg.Diagnostics.ProbeTimeout)
			},
		})
	}
	steps = append(steps, Step{
		Name: "remove-contexts",
		Run: func(ctx context.Context, env *Env) error {
			removed, err := deps.Kube.RemoveContexts(cfg.Demo.Contexts...)
			if err != nil {
				return fmt.Errorf("failed to update kubeconfig: %w", err)
			}
			env.Contexts = removed
			if len(removed) > 0 {
				logging.Info("lifecycle", "Removed kubeconfig contexts: %s", strings.Join(removed, ", "))
			}
			return nil
		},
	})

	return NewPlan("destroy-demo-environment", steps...)
}

// deleteClusters removes local demo clusters, treating "already gone" as
// success so teardown and rollback stay idempotent.
func deleteClusters(ctx context.Context, runner execkit.Runner, platform config.Platform, clusters []string, timeout time.Duration) error {
	var failures []string
	for _, cluster := range clusters {
		var cmd execkit.Command
		switch platform {
		case config.PlatformK3d:
			cmd = execkit.Command{Binary: "k3d", Args: []string{"cluster", "delete", cluster}, Timeout: timeout}
		default:
			cmd = execkit.Command{Binary: "kind", Args: []string{"delete", "cluster", "--name", cluster}, Timeout: timeout}
		}
		r := runner.Run(ctx, cmd)
		if r.Ok() || clusterAlreadyGone(r) {
			logging.Debug("lifecycle", "Cluster %s deleted (or already absent)", cluster)
			continue
		}
		failures = append(failures, fmt.Sprintf("%s: %s", cluster, firstNonEmpty(strings.TrimSpace(r.Stderr), fmt.Sprintf("exit code %d", r.ExitCode))))
	}
	if len(failures) > 0 {
		return fmt.Errorf("failed to delete cluster(s): %s", strings.Join(failures, "; "))
	}
	return nil
}

// clusterAlreadyGone recognises the "nothing to delete" responses of kind
// and k3d, which exit non-zero on some versions.
func clusterAlreadyGone(r execkit.Result) bool {
	combined := strings.ToLower(r.Stdout + "\n" + r.Stderr)
	for _, marker := range []string{"not found", "no clusters found", "does not exist", "could not be found", "no nodes found"} {
		if strings.Contains(combined, marker) {
			return true
		}
	}
	return false
}

func removeInstaller(env *Env) error {
	if env.InstallerPath == "" {
		return nil
	}
	err := os.Remove(env.InstallerPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove installer script %s: %w", env.InstallerPath, err)
	}
	env.InstallerPath = ""
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
