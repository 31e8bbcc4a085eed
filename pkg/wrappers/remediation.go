package wrappers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// RemediationWrapper implements the Tool interface for fix plans
type RemediationWrapper struct {
	Analyzer Analyzer
	Engine   *engine.RemediationEngine
}

func (r *RemediationWrapper) Name() string {
	return "GenerateRemediation"
}

func (r *RemediationWrapper) Description() string {
	return "Generates a fix plan (fix, validation and rollback commands) for a finding on the given resource. Use 'list' as resource_id to list templates."
}

func (r *RemediationWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"resource_id": map[string]interface{}{
				"type":        "string",
				"description": "Resource ID of the finding to remediate, as reported by RunSecurityScan.",
			},
			"template_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional template to force instead of matching on the finding.",
			},
		},
		"required": []string{"resource_id"},
	}
}

func (r *RemediationWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if r.Engine == nil || r.Analyzer == nil {
		return "Error: remediation engine not initialized.", nil
	}

	resourceID := stringArg(args, "resource_id")
	templateID := stringArg(args, "template_id")

	if strings.EqualFold(resourceID, "list") {
		return "Available Remediation Templates:\n" + strings.Join(r.Engine.ListTemplates(), "\n"), nil
	}
	if resourceID == "" {
		return "Error: resource_id is required.", nil
	}

	results, err := r.Analyzer.Scan(ctx)
	if err != nil {
		return "", err
	}

	var plans []string
	for _, res := range results {
		if res.ResourceID != resourceID {
			continue
		}
		plan, err := r.plan(res, templateID)
		switch {
		case errors.Is(err, engine.ErrNoRemediation):
			plans = append(plans, fmt.Sprintf("No remediation template for '%s' on %s. Recommendation: %s", res.Finding, res.ResourceID, res.Recommendation))
		case err != nil:
			return fmt.Sprintf("Error generating plan: %v", err), nil
		default:
			plans = append(plans, plan)
		}
	}
	if len(plans) == 0 {
		return fmt.Sprintf("No findings for resource '%s' in the current scan.", resourceID), nil
	}
	return strings.Join(plans, "\n"), nil
}

func (r *RemediationWrapper) plan(res engine.ScanResult, templateID string) (string, error) {
	if templateID == "" {
		return r.Engine.PlanFor(res)
	}
	return r.Engine.GeneratePlan(templateID, map[string]string{
		engine.VarResourceID:   res.ResourceID,
		engine.VarResourceType: res.ResourceType,
		engine.VarFinding:      res.Finding,
	})
}
