package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var observed = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeSecurityHub(t *testing.T) {
	raw := map[string]interface{}{
		"Id":          "arn:aws:securityhub:us-east-1:123456789012:finding/abc",
		"ProductName": "GuardDuty",
		"Title":       "EC2 instance communicating with a known C2 server",
		"Description": "Instance i-0abc is talking to a command and control host.",
		"Severity":    map[string]interface{}{"Label": "CRITICAL"},
		"Remediation": map[string]interface{}{
			"Recommendation": map[string]interface{}{"Text": "Isolate the instance"},
		},
		"Resources": []interface{}{
			map[string]interface{}{"Id": "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc", "Type": "AwsEc2Instance"},
			map[string]interface{}{"Id": "ignored"},
		},
	}

	f := Normalize(raw, SourceSecurityHub, observed)

	assert.Equal(t, "arn:aws:securityhub:us-east-1:123456789012:finding/abc", f.SourceID)
	assert.Equal(t, "arn:aws:ec2:us-east-1:123456789012:instance/i-0abc", f.ResourceID)
	assert.Equal(t, "GuardDuty", f.ResourceType)
	assert.Equal(t, SeverityCritical, f.Severity)
	assert.Equal(t, "EC2 instance communicating with a known C2 server", f.Title)
	require.NotNil(t, f.Recommendation)
	assert.Equal(t, "Isolate the instance", *f.Recommendation)
	assert.Equal(t, StatusOpen, f.Status)
	assert.Equal(t, observed, f.ObservedAt)
}

func TestNormalizeSecurityHubFallsBackToFindingID(t *testing.T) {
	f := Normalize(map[string]interface{}{"Id": "finding-1", "Resources": []interface{}{}}, SourceSecurityHub, observed)
	assert.Equal(t, "finding-1", f.ResourceID)
	assert.Equal(t, "finding-1", f.SourceID)
}

func TestNormalizeMissingFields(t *testing.T) {
	for _, kind := range []SourceKind{SourceSecurityHub, SourcePolicy, SourceKind("other")} {
		f := Normalize(nil, kind, observed)
		assert.Equal(t, SeverityUnknown, f.Severity)
		assert.Nil(t, f.Recommendation)
		assert.Empty(t, f.Title)
		assert.Empty(t, f.Description)
		assert.Empty(t, f.ResourceID)
		assert.Equal(t, StatusOpen, f.Status)
	}
}

func TestNormalizeWrongTypesNeverPanic(t *testing.T) {
	raw := map[string]interface{}{
		"Id":          42,
		"Title":       []string{"x"},
		"Severity":    "HIGH",
		"Remediation": map[string]interface{}{"Recommendation": "text"},
		"Resources":   "arn",
	}
	assert.NotPanics(t, func() {
		f := Normalize(raw, SourceSecurityHub, observed)
		assert.Equal(t, SeverityUnknown, f.Severity)
		assert.Empty(t, f.ResourceID)
		assert.Nil(t, f.Recommendation)
	})
}

func TestNormalizeSeverityLabel(t *testing.T) {
	label := func(l interface{}) map[string]interface{} {
		return map[string]interface{}{"Id": "x", "Severity": map[string]interface{}{"Label": l}}
	}
	assert.Equal(t, SeverityHigh, Normalize(label("HIGH"), SourceSecurityHub, observed).Severity)
	assert.Equal(t, SeverityUnknown, Normalize(label("banana"), SourceSecurityHub, observed).Severity)
	assert.Equal(t, SeverityUnknown, Normalize(label(nil), SourceSecurityHub, observed).Severity)
}

func TestNormalizeEmptyRecommendationIsAbsent(t *testing.T) {
	raw := map[string]interface{}{
		"Id":          "x",
		"Remediation": map[string]interface{}{"Recommendation": map[string]interface{}{"Text": ""}},
	}
	assert.Nil(t, Normalize(raw, SourceSecurityHub, observed).Recommendation)
}

func TestNormalizePolicy(t *testing.T) {
	raw := map[string]interface{}{
		PolicyKeyID:             "ANPA000000000EXAMPLE",
		PolicyKeyArn:            "arn:aws:iam::123456789012:policy/admin-all",
		PolicyKeyName:           "admin-all",
		PolicyKeySeverity:       "HIGH",
		PolicyKeyFinding:        "Overly permissive IAM policy detected",
		PolicyKeyRecommendation: "Review and restrict policy permissions",
	}

	f := Normalize(raw, SourcePolicy, observed)

	assert.Equal(t, "ANPA000000000EXAMPLE", f.ResourceID)
	assert.Equal(t, ResourceTypePolicy, f.ResourceType)
	assert.Equal(t, SeverityHigh, f.Severity)
	assert.Equal(t, PolicyAlertID("arn:aws:iam::123456789012:policy/admin-all"), f.SourceID)
	require.NotNil(t, f.Recommendation)
	assert.Equal(t, "Review and restrict policy permissions", *f.Recommendation)
}

func TestPolicyAlertIDIsStable(t *testing.T) {
	a := PolicyAlertID("arn:aws:iam::123456789012:policy/one")
	assert.Equal(t, a, PolicyAlertID("arn:aws:iam::123456789012:policy/one"))
	assert.NotEqual(t, a, PolicyAlertID("arn:aws:iam::123456789012:policy/two"))
}

func TestProjections(t *testing.T) {
	rec := "rotate"
	f := Finding{
		SourceID:       "id-1",
		ResourceID:     "res-1",
		ResourceType:   "Inspector",
		Severity:       SeverityHigh,
		Title:          "Outdated package",
		Description:    "openssl is outdated",
		Recommendation: &rec,
		Status:         StatusOpen,
		ObservedAt:     observed,
	}

	sr := f.ScanResult()
	assert.Equal(t, "Outdated package", sr.Finding)
	assert.Equal(t, "rotate", sr.Recommendation)
	assert.Equal(t, observed, sr.LastUpdated)

	a := f.Alert()
	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "openssl is outdated", a.Description)
	assert.Equal(t, observed, a.CreatedAt)

	f.Recommendation = nil
	assert.Equal(t, "", f.ScanResult().Recommendation)
	assert.Nil(t, f.Alert().Recommendation)
}
