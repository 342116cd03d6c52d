// Package mcpserver exposes the diagnostics engine and lifecycle
// orchestrator as MCP tools over the stdio transport. This is the RPC
// boundary: each tool maps 1:1 onto either a diagnostics run over a catalog
// subset or the execution of a named lifecycle plan.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/cluster"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/diagnostics"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/execkit"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/kubeconfig"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/lifecycle"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

const (
	serverName    = "kubestellar-mcp"
	serverVersion = "0.1.0"
)

// Service wires the core components behind the MCP tool handlers.
type Service struct {
	cfg           config.Config
	catalog       *probe.Catalog
	engine        *diagnostics.Engine
	verboseEngine *diagnostics.Engine
	inspector     *cluster.Inspector
	orchestrator  *lifecycle.Orchestrator
	planDeps      lifecycle.PlanDeps
}

// NewService builds the service from configuration with the production
// runner and kubeconfig client.
func NewService(cfg config.Config) (*Service, error) {
	return newService(cfg, execkit.NewRunner(), kubeconfig.NewClient())
}

// newService is the seam tests use to substitute fakes.
func newService(cfg config.Config, runner execkit.Runner, kube kubeconfig.Client) (*Service, error) {
	catalog, err := diagnostics.NewKubeStellarCatalog(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{
		cfg:     cfg,
		catalog: catalog,
		engine: diagnostics.NewEngine(runner,
			diagnostics.WithConcurrency(cfg.Diagnostics.Concurrency),
			diagnostics.WithVerbose(cfg.Diagnostics.Verbose)),
		verboseEngine: diagnostics.NewEngine(runner,
			diagnostics.WithConcurrency(cfg.Diagnostics.Concurrency),
			diagnostics.WithVerbose(true)),
		inspector:    cluster.NewInspector(runner, kube, cfg),
		orchestrator: lifecycle.NewOrchestrator(),
		planDeps: lifecycle.PlanDeps{
			Runner: runner,
			Kube:   kube,
			Config: cfg,
		},
	}, nil
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects or the context is cancelled. Logs go to stderr only; stdout
// belongs to the protocol.
func (s *Service) ServeStdio(ctx context.Context) error {
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	logging.Info("mcpserver", "Starting %s v%s on stdio", serverName, serverVersion)
	return server.ServeStdio(mcpServer)
}
