package engine

import "time"

// SourceKind identifies which upstream produced a raw record.
type SourceKind string

const (
	SourcePolicy      SourceKind = "iam-policy"
	SourceSecurityHub SourceKind = "security-hub"
)

// Status of a finding. Only OPEN is modeled; there is no closure lifecycle.
type Status string

const StatusOpen Status = "OPEN"

// ResourceTypePolicy tags findings produced by the IAM policy evaluator.
const ResourceTypePolicy = "IAM_POLICY"

// Finding represents a normalized security finding from any upstream source
type Finding struct {
	// SourceID is the upstream finding identifier, or a synthetic id for
	// sources that have none. It becomes Alert.ID.
	SourceID       string     `json:"source_id"`
	Source         SourceKind `json:"source"`
	ResourceID     string     `json:"resource_id"`
	ResourceType   string     `json:"resource_type"`
	Severity       Severity   `json:"severity"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Recommendation *string    `json:"recommendation,omitempty"`
	Status         Status     `json:"status"`
	ObservedAt     time.Time  `json:"observed_at"`
}

// Key is the identity used for de-duplication and snapshot comparison.
func (f Finding) Key() string {
	return f.ResourceID + "\x00" + f.Title
}

// RecommendationText returns the recommendation or an empty string.
func (f Finding) RecommendationText() string {
	if f.Recommendation == nil {
		return ""
	}
	return *f.Recommendation
}

// ScanResult is the raw-scan read model of a Finding.
type ScanResult struct {
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	Severity       Severity  `json:"severity"`
	Finding        string    `json:"finding"`
	Recommendation string    `json:"recommendation"`
	Status         Status    `json:"status"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Key mirrors Finding.Key for scan results loaded from snapshots.
func (r ScanResult) Key() string {
	return r.ResourceID + "\x00" + r.Finding
}

// Alert is the alert-facing read model of a Finding.
type Alert struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	ResourceID     string    `json:"resource_id"`
	ResourceType   string    `json:"resource_type"`
	CreatedAt      time.Time `json:"created_at"`
	Status         Status    `json:"status"`
	Recommendation *string   `json:"recommendation,omitempty"`
}

// ScanResult projects the finding into the scan view.
func (f Finding) ScanResult() ScanResult {
	return ScanResult{
		ResourceID:     f.ResourceID,
		ResourceType:   f.ResourceType,
		Severity:       f.Severity,
		Finding:        f.Title,
		Recommendation: f.RecommendationText(),
		Status:         f.Status,
		LastUpdated:    f.ObservedAt,
	}
}

// Alert projects the finding into the alert view.
func (f Finding) Alert() Alert {
	return Alert{
		ID:             f.SourceID,
		Title:          f.Title,
		Description:    f.Description,
		Severity:       f.Severity,
		ResourceID:     f.ResourceID,
		ResourceType:   f.ResourceType,
		CreatedAt:      f.ObservedAt,
		Status:         f.Status,
		Recommendation: f.Recommendation,
	}
}

// ScanResults projects a list of findings, preserving order.
func ScanResults(findings []Finding) []ScanResult {
	out := make([]ScanResult, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.ScanResult())
	}
	return out
}

// Alerts projects a list of findings, preserving order.
func Alerts(findings []Finding) []Alert {
	out := make([]Alert, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Alert())
	}
	return out
}
