package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
)

// registerTools declares the fixed tool catalog. Every tool maps onto one
// core call: a diagnostics run over a catalog subset, or a lifecycle plan.
func (s *Service) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("check_kubestellar_status",
		mcp.WithDescription("Check the KubeStellar installation status and run the full diagnostic catalog"),
	), s.handleCheckStatus)

	mcpServer.AddTool(mcp.NewTool("check_prerequisites",
		mcp.WithDescription("Verify that the required tooling (kubectl, docker, helm, and optionally go/kind/k3d) is installed"),
	), s.handleCheckPrerequisites)

	mcpServer.AddTool(mcp.NewTool("get_installation_help",
		mcp.WithDescription("Get KubeStellar installation guidance together with a live prerequisites report"),
	), s.handleInstallationHelp)

	mcpServer.AddTool(mcp.NewTool("get_cluster_info",
		mcp.WithDescription("Get detailed information about KubeStellar clusters and their resources"),
		mcp.WithString("context",
			mcp.Description("Limit inspection to a single kubeconfig context"),
		),
	), s.handleClusterInfo)

	mcpServer.AddTool(mcp.NewTool("diagnose_issues",
		mcp.WithDescription("Run comprehensive diagnostics with full remediation detail"),
	), s.handleDiagnoseIssues)

	mcpServer.AddTool(mcp.NewTool("create_demo_environment",
		mcp.WithDescription("Create the KubeStellar demo environment (kubeflex, cluster1, cluster2)"),
		mcp.WithString("platform",
			mcp.Description("Local cluster platform to provision on"),
			mcp.Enum(string(config.PlatformKind), string(config.PlatformK3d)),
		),
	), s.handleCreateDemo)

	mcpServer.AddTool(mcp.NewTool("destroy_demo_environment",
		mcp.WithDescription("Destroy the KubeStellar demo environment and clean up kubeconfig contexts"),
		mcp.WithString("platform",
			mcp.Description("Local cluster platform the environment was provisioned on"),
			mcp.Enum(string(config.PlatformKind), string(config.PlatformK3d)),
		),
	), s.handleDestroyDemo)
}
