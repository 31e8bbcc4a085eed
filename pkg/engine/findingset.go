package engine

import (
	"fmt"
	"strings"
	"sync"
)

// FindingSet accumulates findings for one collector run and drops
// duplicates on (resource id, finding text). The first occurrence wins, so
// insertion order is stable.
type FindingSet struct {
	mu       sync.RWMutex
	findings []Finding
	seen     map[string]struct{}
}

// NewFindingSet creates an empty set
func NewFindingSet() *FindingSet {
	return &FindingSet{
		findings: make([]Finding, 0),
		seen:     make(map[string]struct{}),
	}
}

// Add ingests findings and reports how many were new.
func (s *FindingSet) Add(findings ...Finding) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, f := range findings {
		key := f.Key()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.findings = append(s.findings, f)
		added++
	}
	return added
}

// Findings returns a copy of the accumulated findings in insertion order.
func (s *FindingSet) Findings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

func (s *FindingSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.findings)
}

// CountBySeverity tallies scan results per severity.
func CountBySeverity(results []ScanResult) map[Severity]int {
	counts := make(map[Severity]int)
	for _, r := range results {
		counts[r.Severity]++
	}
	return counts
}

// Report returns a text summary of scan results
func Report(results []ScanResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Security Findings (%d):\n", len(results)))
	sb.WriteString("--------------------------------------------------\n")

	for _, r := range results {
		sb.WriteString(fmt.Sprintf("[%s] %s (%s)\n", r.Severity, r.Finding, r.ResourceType))
		sb.WriteString(fmt.Sprintf("  Resource: %s\n", r.ResourceID))
		if r.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("  Fix: %s\n", r.Recommendation))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
