package wrappers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// SaveSnapshotWrapper implements the Tool interface for saving the current scan
type SaveSnapshotWrapper struct {
	Analyzer Analyzer
	Region   string
}

func (s *SaveSnapshotWrapper) Name() string {
	return "SaveSnapshot"
}

func (s *SaveSnapshotWrapper) Description() string {
	return "Runs a scan and saves the findings to a snapshot file for future comparison."
}

func (s *SaveSnapshotWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Optional filename for the snapshot (default: " + engine.DefaultSnapshotPath + ")",
			},
		},
	}
}

func (s *SaveSnapshotWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if s.Analyzer == nil {
		return "Error: analyzer not initialized.", nil
	}

	filename := engine.DefaultSnapshotPath
	if val := stringArg(args, "filename"); val != "" {
		filename = val
	}

	results, err := s.Analyzer.Scan(ctx)
	if err != nil {
		return "", err
	}
	snap := engine.Snapshot{TakenAt: time.Now().UTC(), Region: s.Region, Results: results}
	if err := engine.SaveSnapshot(filename, snap); err != nil {
		return fmt.Sprintf("Error saving snapshot: %v", err), nil
	}

	return fmt.Sprintf("Successfully saved %d findings to snapshot '%s'.", len(results), filename), nil
}

// DiffSnapshotWrapper implements the Tool interface for comparing current findings with a baseline
type DiffSnapshotWrapper struct {
	Analyzer Analyzer
}

func (d *DiffSnapshotWrapper) Name() string {
	return "CompareWithBaseline"
}

func (d *DiffSnapshotWrapper) Description() string {
	return "Compares the current security findings against a previously saved snapshot to identify New, Fixed, and Unchanged risks."
}

func (d *DiffSnapshotWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": "Optional filename of the baseline snapshot (default: " + engine.DefaultSnapshotPath + ")",
			},
		},
	}
}

func (d *DiffSnapshotWrapper) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	if d.Analyzer == nil {
		return "Error: analyzer not initialized.", nil
	}

	filename := engine.DefaultSnapshotPath
	if val := stringArg(args, "filename"); val != "" {
		filename = val
	}

	baseline, err := engine.LoadSnapshot(filename)
	if err != nil {
		return fmt.Sprintf("Error loading baseline snapshot '%s': %v. Have you saved a snapshot before?", filename, err), nil
	}

	results, err := d.Analyzer.Scan(ctx)
	if err != nil {
		return "", err
	}
	return FormatDiff(engine.CompareSnapshot(results, baseline.Results), filename), nil
}

const maxUnchangedListed = 10

// FormatDiff renders a snapshot comparison as text.
func FormatDiff(diff engine.SnapshotDiff, baseline string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Snapshot Comparison (vs %s):\n", baseline))
	sb.WriteString("--------------------------------------------------\n")

	sb.WriteString(fmt.Sprintf("NEW RISKS: %d\n", len(diff.New)))
	for _, r := range diff.New {
		sb.WriteString(diffLine("+", r))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("FIXED RISKS: %d\n", len(diff.Fixed)))
	for _, r := range diff.Fixed {
		sb.WriteString(diffLine("-", r))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("UNCHANGED RISKS: %d\n", len(diff.Unchanged)))
	for i, r := range diff.Unchanged {
		if i == maxUnchangedListed {
			sb.WriteString(fmt.Sprintf("  ... and %d more.\n", len(diff.Unchanged)-maxUnchangedListed))
			break
		}
		sb.WriteString(diffLine("=", r))
	}

	return sb.String()
}

func diffLine(mark string, r engine.ScanResult) string {
	return fmt.Sprintf("  [%s] [%s] %s (%s) - %s\n", mark, r.Severity, r.Finding, r.ResourceType, r.ResourceID)
}
