package wrappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// ScanWrapper implements the Tool interface for a full security scan
type ScanWrapper struct {
	Analyzer Analyzer
}

func (s *ScanWrapper) Name() string {
	return "RunSecurityScan"
}

func (s *ScanWrapper) Description() string {
	return "Scans the AWS account: overly permissive IAM policies plus CRITICAL and HIGH Security Hub findings."
}

func (s *ScanWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (s *ScanWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if s.Analyzer == nil {
		return "Error: analyzer not initialized.", nil
	}
	results, err := s.Analyzer.Scan(ctx)
	if err != nil {
		return "", err
	}
	return engine.Report(results), nil
}

// AlertsWrapper implements the Tool interface for listing Security Hub alerts
type AlertsWrapper struct {
	Analyzer Analyzer
}

func (a *AlertsWrapper) Name() string {
	return "GetSecurityAlerts"
}

func (a *AlertsWrapper) Description() string {
	return "Lists open Security Hub alerts (CRITICAL and HIGH). Optionally filter by severity."
}

func (a *AlertsWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"severity": map[string]interface{}{
				"type":        "string",
				"description": "Only return alerts with this severity (CRITICAL or HIGH).",
			},
		},
	}
}

func (a *AlertsWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if a.Analyzer == nil {
		return "Error: analyzer not initialized.", nil
	}
	alerts, err := a.Analyzer.Alerts(ctx)
	if err != nil {
		return "", err
	}

	severity := strings.ToUpper(stringArg(args, "severity"))
	var sb strings.Builder
	shown := 0
	for _, al := range alerts {
		if severity != "" && string(al.Severity) != severity {
			continue
		}
		shown++
		sb.WriteString(fmt.Sprintf("[%s] %s\n", al.Severity, al.Title))
		sb.WriteString(fmt.Sprintf("  ID: %s\n  Resource: %s (%s)\n", al.ID, al.ResourceID, al.ResourceType))
		if al.Recommendation != nil {
			sb.WriteString(fmt.Sprintf("  Fix: %s\n", *al.Recommendation))
		}
	}
	return fmt.Sprintf("Security Alerts (%d):\n%s", shown, sb.String()), nil
}

// ScoreWrapper implements the Tool interface for the posture score
type ScoreWrapper struct {
	Analyzer Analyzer
}

func (s *ScoreWrapper) Name() string {
	return "GetSecurityScore"
}

func (s *ScoreWrapper) Description() string {
	return "Returns the security score (0-100). Each open alert costs 5 points; 0 also means alerts could not be retrieved."
}

func (s *ScoreWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (s *ScoreWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if s.Analyzer == nil {
		return "Error: analyzer not initialized.", nil
	}
	return fmt.Sprintf("Security score: %.0f/100", s.Analyzer.Score(ctx)), nil
}
