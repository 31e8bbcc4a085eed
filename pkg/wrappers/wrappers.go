// Package wrappers exposes analyzer operations as advisor tools.
package wrappers

import (
	"context"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/advisor"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// Analyzer is the analyzer surface the tools call into.
type Analyzer interface {
	Scan(ctx context.Context) ([]engine.ScanResult, error)
	Alerts(ctx context.Context) ([]engine.Alert, error)
	Score(ctx context.Context) float64
	Compliance(ctx context.Context, profile engine.Profile) (engine.ComplianceReport, error)
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// Tools returns every wrapper bound to a, in the order they are offered to
// the model.
func Tools(a Analyzer, ce *engine.ComplianceEngine, re *engine.RemediationEngine, region string) []advisor.Tool {
	return []advisor.Tool{
		&ScanWrapper{Analyzer: a},
		&AlertsWrapper{Analyzer: a},
		&ScoreWrapper{Analyzer: a},
		&ComplianceWrapper{Analyzer: a, Engine: ce},
		&SaveSnapshotWrapper{Analyzer: a, Region: region},
		&DiffSnapshotWrapper{Analyzer: a},
		&RemediationWrapper{Analyzer: a, Engine: re},
	}
}
