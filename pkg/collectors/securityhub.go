package collectors

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	hubtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"
	"github.com/go-logr/logr"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/awsclient"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// AlertSeverities are the severity labels requested from Security Hub.
var AlertSeverities = []engine.Severity{engine.SeverityCritical, engine.SeverityHigh}

// FindingsCollector lists Security Hub findings with a CRITICAL or HIGH
// severity label.
type FindingsCollector struct {
	Client awsclient.SecurityHubAPI
	Log    logr.Logger
	Now    Clock
}

func NewFindingsCollector(client awsclient.SecurityHubAPI, log logr.Logger) *FindingsCollector {
	return &FindingsCollector{
		Client: client,
		Log:    log.WithName("collector").WithValues("source", "security-hub"),
	}
}

func (c *FindingsCollector) Name() string {
	return "security-hub"
}

// SeverityFilter matches any finding whose label equals one of
// AlertSeverities.
func SeverityFilter() *hubtypes.AwsSecurityFindingFilters {
	filters := &hubtypes.AwsSecurityFindingFilters{}
	for _, s := range AlertSeverities {
		filters.SeverityLabel = append(filters.SeverityLabel, hubtypes.StringFilter{
			Value:      aws.String(s.String()),
			Comparison: hubtypes.StringFilterComparisonEquals,
		})
	}
	return filters
}

func (c *FindingsCollector) Collect(ctx context.Context) ([]engine.Finding, error) {
	observed := c.Now.now()
	set := engine.NewFindingSet()
	guard := pageGuard{}
	filters := SeverityFilter()

	input := &securityhub.GetFindingsInput{Filters: filters}
	for page := 1; ; page++ {
		out, err := c.Client.GetFindings(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("get findings (page %d): %w", page, err)
		}

		for _, finding := range out.Findings {
			f := engine.Normalize(findingRecord(finding), engine.SourceSecurityHub, observed)
			if f.ResourceID == "" {
				c.Log.V(1).Info("Skipping finding without an identifier", "title", f.Title)
				continue
			}
			set.Add(f)
		}

		token := aws.ToString(out.NextToken)
		if token == "" {
			break
		}
		if guard.seen(token) {
			return nil, fmt.Errorf("get findings: next token repeated")
		}
		input = &securityhub.GetFindingsInput{Filters: filters, NextToken: aws.String(token)}
	}

	c.Log.V(1).Info("Findings collected", "findings", set.Len())
	return set.Findings(), nil
}

// findingRecord flattens the fields the normalizer reads into the loosely
// typed record shape used by Security Hub's JSON form.
func findingRecord(f hubtypes.AwsSecurityFinding) map[string]interface{} {
	rec := map[string]interface{}{
		"Id":          aws.ToString(f.Id),
		"ProductName": aws.ToString(f.ProductName),
		"Title":       aws.ToString(f.Title),
		"Description": aws.ToString(f.Description),
	}

	if f.Severity != nil {
		rec["Severity"] = map[string]interface{}{"Label": string(f.Severity.Label)}
	}
	if f.Remediation != nil && f.Remediation.Recommendation != nil {
		rec["Remediation"] = map[string]interface{}{
			"Recommendation": map[string]interface{}{
				"Text": aws.ToString(f.Remediation.Recommendation.Text),
			},
		}
	}

	resources := make([]interface{}, 0, len(f.Resources))
	for _, r := range f.Resources {
		resources = append(resources, map[string]interface{}{
			"Id":   aws.ToString(r.Id),
			"Type": aws.ToString(r.Type),
		})
	}
	rec["Resources"] = resources
	return rec
}
