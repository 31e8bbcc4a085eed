package engine

// Severity is the normalized severity of a finding.
type Severity string

const (
	SeverityCritical      Severity = "CRITICAL"
	SeverityHigh          Severity = "HIGH"
	SeverityMedium        Severity = "MEDIUM"
	SeverityLow           Severity = "LOW"
	SeverityInformational Severity = "INFORMATIONAL"
	SeverityUnknown       Severity = "UNKNOWN"
)

// ParseSeverity maps an upstream label to a Severity. The match is exact and
// case-sensitive; any other label is UNKNOWN.
func ParseSeverity(label string) Severity {
	switch Severity(label) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInformational:
		return Severity(label)
	default:
		return SeverityUnknown
	}
}

// Rank orders severities, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 5
	case SeverityHigh:
		return 4
	case SeverityMedium:
		return 3
	case SeverityLow:
		return 2
	case SeverityInformational:
		return 1
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}
