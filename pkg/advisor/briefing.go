package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

const defaultTopFindings = 10

// Briefing is the posture summary handed to the model.
type Briefing struct {
	Region  string
	Score   float64
	Results []engine.ScanResult
	Alerts  []engine.Alert
	// TopN limits the findings listed in full. Zero means 10.
	TopN int
}

var severityOrder = []engine.Severity{
	engine.SeverityCritical,
	engine.SeverityHigh,
	engine.SeverityMedium,
	engine.SeverityLow,
	engine.SeverityInformational,
	engine.SeverityUnknown,
}

// Render formats the briefing as the user turn of the conversation.
func (b Briefing) Render() string {
	var sb strings.Builder

	region := b.Region
	if region == "" {
		region = "(default)"
	}
	sb.WriteString(fmt.Sprintf("Security posture for AWS region %s\n", region))
	sb.WriteString(fmt.Sprintf("Score: %.0f/100 with %d open Security Hub alerts\n\n", b.Score, len(b.Alerts)))

	counts := engine.CountBySeverity(b.Results)
	sb.WriteString(fmt.Sprintf("Findings by severity (%d total):\n", len(b.Results)))
	for _, s := range severityOrder {
		if counts[s] > 0 {
			sb.WriteString(fmt.Sprintf("  %s: %d\n", s, counts[s]))
		}
	}
	sb.WriteString("\n")

	top := b.topFindings()
	if len(top) > 0 {
		sb.WriteString("Most severe findings:\n")
		for i, r := range top {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s (%s %s)\n", i+1, r.Severity, r.Finding, r.ResourceType, r.ResourceID))
			if r.Recommendation != "" {
				sb.WriteString(fmt.Sprintf("     Fix: %s\n", r.Recommendation))
			}
		}
		if rest := len(b.Results) - len(top); rest > 0 {
			sb.WriteString(fmt.Sprintf("  ... and %d more.\n", rest))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Summarize this posture, explain the most urgent risks and recommend remediation steps in priority order.")
	return sb.String()
}

func (b Briefing) topFindings() []engine.ScanResult {
	n := b.TopN
	if n <= 0 {
		n = defaultTopFindings
	}
	sorted := make([]engine.ScanResult, len(b.Results))
	copy(sorted, b.Results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Severity.Rank() > sorted[j].Severity.Rank()
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
