package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/cluster"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/diagnostics"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/installer"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/render"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// checkDeps holds everything the check subcommands need once configuration
// is loaded and logging is initialised.
type checkDeps struct {
	cfg       config.Config
	catalog   *probe.Catalog
	engine    *diagnostics.Engine
	inspector *cluster.Inspector
}

func setupCheck(verbose bool) (*checkDeps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	catalog, err := diagnostics.NewKubeStellarCatalog(cfg)
	if err != nil {
		return nil, err
	}

	runner := execkit.NewRunner()
	return &checkDeps{
		cfg:     cfg,
		catalog: catalog,
		engine: diagnostics.NewEngine(runner,
			diagnostics.WithConcurrency(cfg.Diagnostics.Concurrency),
			diagnostics.WithVerbose(verbose || cfg.Diagnostics.Verbose)),
		inspector: cluster.NewInspector(runner, kubeconfig.NewClient(), cfg),
	}, nil
}

func newCheckCmd() *cobra.Command {
	var (
		output  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run diagnostics against the local KubeStellar environment",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", string(render.FormatTable), "Output format: table, json, or yaml")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show full remediation detail")

	runReport := func(cmd *cobra.Command, categories ...probe.Category) error {
		format, err := render.ParseFormat(output)
		if err != nil {
			return err
		}
		deps, err := setupCheck(verbose)
		if err != nil {
			return err
		}

		catalog := deps.catalog
		if len(categories) > 0 {
			catalog = catalog.SelectCategories(categories...)
		}
		report := deps.engine.Run(cmd.Context(), catalog)
		if err := render.Report(cmd.OutOrStdout(), format, report); err != nil {
			return err
		}
		if report.Overall == probe.StatusFailed {
			return fmt.Errorf("diagnostics reported failures")
		}
		return nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Check whether KubeStellar is installed and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}
			deps, err := setupCheck(verbose)
			if err != nil {
				return err
			}

			status := deps.inspector.CheckStatus(cmd.Context())
			report := deps.engine.Run(cmd.Context(), deps.catalog)

			if format == render.FormatTable {
				printInstallStatus(cmd, status)
				if err := render.Report(cmd.OutOrStdout(), format, report); err != nil {
					return err
				}
			} else {
				payload := struct {
					Installation cluster.InstallStatus `json:"installation"`
					Report       probe.Report          `json:"report"`
				}{status, report}
				if err := writeStructured(cmd, format, payload); err != nil {
					return err
				}
			}
			if report.Overall == probe.StatusFailed {
				return fmt.Errorf("diagnostics reported failures")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prerequisites",
		Short: "Verify the required tooling is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, probe.CategoryTooling)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "issues",
		Short: "Run the full diagnostic catalog with remediation detail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose = true
			return runReport(cmd)
		},
	})

	var contextName string
	clusterInfoCmd := &cobra.Command{
		Use:   "cluster-info",
		Short: "Inspect KubeStellar clusters and the resources they hold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}
			deps, err := setupCheck(verbose)
			if err != nil {
				return err
			}

			overview := deps.inspector.Overview(cmd.Context(), contextName)
			return writeStructured(cmd, format, overview)
		},
	}
	clusterInfoCmd.Flags().StringVar(&contextName, "context", "", "Limit inspection to a single kubeconfig context")
	cmd.AddCommand(clusterInfoCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "install-help",
		Short: "Print KubeStellar installation guidance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(output)
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return writeStructured(cmd, format, installer.BuildGuide(cfg))
		},
	})

	return cmd
}

func printInstallStatus(cmd *cobra.Command, status cluster.InstallStatus) {
	out := cmd.OutOrStdout()
	if status.AllReady {
		fmt.Fprintf(out, "KubeStellar is installed and ready (context %q)\n\n", status.Context)
		return
	}
	fmt.Fprintf(out, "KubeStellar is not ready: %s\n\n", status.Message)
}

// writeStructured emits v as json or yaml; table falls back to indented json
// for objects that have no table form.
func writeStructured(cmd *cobra.Command, format render.Format, v interface{}) error {
	if format == render.FormatYAML {
		return render.WriteYAML(cmd.OutOrStdout(), v)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
