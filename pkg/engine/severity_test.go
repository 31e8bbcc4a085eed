package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSeverity(t *testing.T) {
	tests := map[string]Severity{
		"CRITICAL":      SeverityCritical,
		"HIGH":          SeverityHigh,
		"MEDIUM":        SeverityMedium,
		"LOW":           SeverityLow,
		"INFORMATIONAL": SeverityInformational,
		"high":          SeverityUnknown,
		"banana":        SeverityUnknown,
		"":              SeverityUnknown,
		"UNKNOWN":       SeverityUnknown,
	}
	for label, want := range tests {
		assert.Equal(t, want, ParseSeverity(label), "label %q", label)
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityLow.Rank(), SeverityUnknown.Rank())
	assert.Equal(t, 0, Severity("banana").Rank())
}
