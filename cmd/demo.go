package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/lifecycle"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/render"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

func newDemoCmd() *cobra.Command {
	var (
		output   string
		platform string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Create or destroy the local KubeStellar demo environment",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", string(render.FormatTable), "Output format: table, json, or yaml")
	cmd.PersistentFlags().StringVar(&platform, "platform", "", "Local cluster platform: kind or k3d (defaults to configuration)")

	runPlan := func(cmd *cobra.Command, build func(lifecycle.PlanDeps, config.Platform) (*lifecycle.Plan, error)) error {
		format, err := render.ParseFormat(output)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

		target := cfg.Demo.Platform
		if platform != "" {
			if target, err = config.ParsePlatform(platform); err != nil {
				return err
			}
		}

		deps := lifecycle.PlanDeps{
			Runner: execkit.NewRunner(),
			Kube:   kubeconfig.NewClient(),
			Config: cfg,
		}
		plan, err := build(deps, target)
		if err != nil {
			return err
		}

		result := lifecycle.NewOrchestrator().Execute(cmd.Context(), plan, &lifecycle.Env{Platform: target})
		if err := render.PlanResult(cmd.OutOrStdout(), format, result); err != nil {
			return err
		}
		if result.Status != lifecycle.PlanSucceeded {
			return fmt.Errorf("plan %s failed", result.Plan)
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Provision the demo environment (kubeflex, cluster1, cluster2)",
		Long: `Downloads the KubeStellar demo installer for the configured release
and runs it against the selected platform. On failure the plan rolls
back: clusters provisioned so far are deleted and the downloaded
installer is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, lifecycle.NewCreateDemoPlan)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "destroy",
		Short: "Delete the demo clusters and clean up kubeconfig contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, lifecycle.NewDestroyDemoPlan)
		},
	})

	return cmd
}
