package wrappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// ComplianceWrapper implements the Tool interface for compliance reports
type ComplianceWrapper struct {
	Analyzer Analyzer
	Engine   *engine.ComplianceEngine
}

func (c *ComplianceWrapper) Name() string {
	return "RunComplianceCheck"
}

func (c *ComplianceWrapper) Description() string {
	return "Maps current findings onto a compliance standard (default NIST CSF 2.0). Can report the full standard or one control."
}

func (c *ComplianceWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"standard": map[string]interface{}{
				"type":        "string",
				"description": "The compliance standard to check (e.g., 'NIST-CSF-2.0'). Use 'list' to list available standards.",
			},
			"control_id": map[string]interface{}{
				"type":        "string",
				"description": "Specific control ID to report (e.g., 'PR.AA-05'). If omitted, reports all controls.",
			},
		},
	}
}

func (c *ComplianceWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if c.Engine == nil || c.Analyzer == nil {
		return "Error: compliance engine not initialized.", nil
	}

	standard := stringArg(args, "standard")
	controlID := stringArg(args, "control_id")

	if strings.EqualFold(standard, "list") {
		return fmt.Sprintf("Available Compliance Standards: %s", strings.Join(c.Engine.ListStandards(), ", ")), nil
	}
	if standard == "" {
		standard = engine.DefaultStandard
	}

	profile, ok := c.Engine.GetProfile(standard)
	if !ok {
		return fmt.Sprintf("Standard '%s' not found. Available: %s", standard, strings.Join(c.Engine.ListStandards(), ", ")), nil
	}

	report, err := c.Analyzer.Compliance(ctx, profile)
	if err != nil {
		return "", err
	}

	if controlID != "" {
		filtered := report.Controls[:0:0]
		for _, cr := range report.Controls {
			if strings.EqualFold(cr.Control.ID, controlID) {
				filtered = append(filtered, cr)
			}
		}
		if len(filtered) == 0 {
			return fmt.Sprintf("No controls found matching ID '%s' in standard '%s'.", controlID, profile.Standard), nil
		}
		report = engine.ComplianceReport{Standard: report.Standard, Controls: filtered}
		for _, cr := range filtered {
			if cr.Status == engine.ControlFail {
				report.Failed++
			} else {
				report.Passed++
			}
		}
	}

	return FormatCompliance(report), nil
}

// FormatCompliance renders a compliance report as text.
func FormatCompliance(report engine.ComplianceReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compliance Check Results for %s:\n\n", report.Standard))

	for _, cr := range report.Controls {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", cr.Status, cr.Control.ID, cr.Control.Name))
		if cr.Status == engine.ControlFail {
			for _, f := range cr.Findings {
				sb.WriteString(fmt.Sprintf("  Evidence: [%s] %s (%s)\n", f.Severity, f.Finding, f.ResourceID))
			}
			sb.WriteString(fmt.Sprintf("  Remediation: %s\n", cr.Control.Remediation))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Summary: %d Controls, %d Passed, %d Failed", len(report.Controls), report.Passed, report.Failed))
	return sb.String()
}
