package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/config"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/installer"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/lifecycle"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
	"github.com/MAVRICK-1/kubestellar-mcp/pkg/logging"
)

// handleCheckStatus combines the installation readiness verdict with a full
// diagnostic report.
func (s *Service) handleCheckStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.inspector.CheckStatus(ctx)
	report := s.engine.Run(ctx, s.catalog)

	return jsonResult(map[string]interface{}{
		"installation": status,
		"report":       report,
	})
}

// handleCheckPrerequisites runs only the tooling-presence batch.
func (s *Service) handleCheckPrerequisites(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.engine.Run(ctx, s.catalog.SelectCategories(probe.CategoryTooling))

	var missing []string
	for _, r := range report.Results {
		if r.Status == probe.StatusFailed {
			missing = append(missing, r.Probe)
		}
	}

	return jsonResult(map[string]interface{}{
		"all_satisfied": report.Overall != probe.StatusFailed,
		"missing":       missing,
		"report":        report,
	})
}

// handleInstallationHelp pairs the static guidance with a live tooling check
// so the caller sees which prerequisites still need attention.
func (s *Service) handleInstallationHelp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	guide := installer.BuildGuide(s.cfg)
	report := s.engine.Run(ctx, s.catalog.SelectCategories(probe.CategoryTooling))

	return jsonResult(map[string]interface{}{
		"guide":         guide,
		"prerequisites": report,
	})
}

// handleClusterInfo inspects compatible contexts (or one named context) and
// attaches the connectivity and inventory batches.
func (s *Service) handleClusterInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	contextName := ""
	if v, ok := args["context"].(string); ok {
		contextName = v
	}

	overview := s.inspector.Overview(ctx, contextName)
	report := s.engine.Run(ctx, s.catalog.SelectCategories(probe.CategoryConnectivity, probe.CategoryInventory))

	return jsonResult(map[string]interface{}{
		"clusters": overview,
		"report":   report,
	})
}

// handleDiagnoseIssues runs the full catalog with verbose remediation and
// rolls the non-OK findings up into issue/recommendation lists.
func (s *Service) handleDiagnoseIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report := s.verboseEngine.Run(ctx, s.catalog)

	var issues, recommendations []string
	for _, r := range report.Results {
		switch r.Status {
		case probe.StatusOK:
		case probe.StatusSkipped:
			issues = append(issues, fmt.Sprintf("%s: %s", r.Probe, r.Remediation))
		default:
			issues = append(issues, fmt.Sprintf("%s: %s", r.Probe, r.Summary))
			if r.Remediation != "" {
				recommendations = append(recommendations, r.Remediation)
			}
		}
	}

	return jsonResult(map[string]interface{}{
		"report":          report,
		"issues_found":    issues,
		"recommendations": recommendations,
	})
}

// handleCreateDemo executes the create-demo plan for the selected platform.
func (s *Service) handleCreateDemo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platform, errResult := s.platformArg(request)
	if errResult != nil {
		return errResult, nil
	}

	plan, err := lifecycle.NewCreateDemoPlan(s.planDeps, platform)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logging.Info("mcpserver", "Creating demo environment on platform %s", platform)
	result := s.orchestrator.Execute(ctx, plan, &lifecycle.Env{Platform: platform})

	payload := map[string]interface{}{
		"success": result.Status == lifecycle.PlanSucceeded,
		"result":  result,
	}
	if result.Status == lifecycle.PlanSucceeded {
		payload["clusters_created"] = s.cfg.Demo.Clusters
		payload["next_steps"] = []string{
			"Use check_kubestellar_status to verify the installation",
			"Use get_cluster_info to inspect the provisioned clusters",
			"Try the example scenarios from the KubeStellar documentation",
		}
	}
	return jsonResult(payload)
}

// handleDestroyDemo executes the destroy-demo plan for the selected platform.
func (s *Service) handleDestroyDemo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	platform, errResult := s.platformArg(request)
	if errResult != nil {
		return errResult, nil
	}

	plan, err := lifecycle.NewDestroyDemoPlan(s.planDeps, platform)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	logging.Info("mcpserver", "Destroying demo environment on platform %s", platform)
	result := s.orchestrator.Execute(ctx, plan, &lifecycle.Env{Platform: platform})

	return jsonResult(map[string]interface{}{
		"success": result.Status == lifecycle.PlanSucceeded,
		"result":  result,
	})
}

// platformArg resolves the optional platform argument, falling back to the
// configured default. Invalid values become tool errors, not Go errors.
func (s *Service) platformArg(request mcp.CallToolRequest) (config.Platform, *mcp.CallToolResult) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, ok := args["platform"].(string)
	if !ok || v == "" {
		return s.cfg.Demo.Platform, nil
	}
	platform, err := config.ParsePlatform(v)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return platform, nil
}

// jsonResult marshals the payload into the single text content the MCP
// clients expect.
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
