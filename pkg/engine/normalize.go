package engine

import (
	"time"

	"github.com/google/uuid"
)

// Raw record keys for the policy-finding shape produced by the IAM collector.
const (
	PolicyKeyID             = "PolicyId"
	PolicyKeyName           = "PolicyName"
	PolicyKeyArn            = "Arn"
	PolicyKeySeverity       = "Severity"
	PolicyKeyFinding        = "Finding"
	PolicyKeyDescription    = "Description"
	PolicyKeyRecommendation = "Recommendation"
)

// policyAlertNamespace scopes synthetic alert ids for policy findings.
var policyAlertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:aws-analyzer:iam-policy"))

// PolicyAlertID derives a stable alert id for a policy, which has no
// upstream alert identifier of its own.
func PolicyAlertID(policyRef string) string {
	return uuid.NewSHA1(policyAlertNamespace, []byte(policyRef)).String()
}

// Normalize maps a loosely typed upstream record into a Finding. Missing
// fields resolve to empty text, UNKNOWN severity and a nil recommendation;
// it never fails.
func Normalize(raw map[string]interface{}, kind SourceKind, observedAt time.Time) Finding {
	f := Finding{
		Source:     kind,
		Severity:   SeverityUnknown,
		Status:     StatusOpen,
		ObservedAt: observedAt,
	}

	switch kind {
	case SourcePolicy:
		normalizePolicy(raw, &f)
	case SourceSecurityHub:
		normalizeSecurityHub(raw, &f)
	}
	return f
}

func normalizePolicy(raw map[string]interface{}, f *Finding) {
	id := stringField(raw, PolicyKeyID)
	arn := stringField(raw, PolicyKeyArn)

	f.ResourceID = firstNonEmpty(id, arn)
	f.ResourceType = ResourceTypePolicy
	f.Severity = ParseSeverity(stringField(raw, PolicyKeySeverity))
	f.Title = stringField(raw, PolicyKeyFinding)
	f.Description = stringField(raw, PolicyKeyDescription)
	f.Recommendation = optionalString(stringField(raw, PolicyKeyRecommendation))
	if ref := firstNonEmpty(arn, id); ref != "" {
		f.SourceID = PolicyAlertID(ref)
	}
}

func normalizeSecurityHub(raw map[string]interface{}, f *Finding) {
	id := stringField(raw, "Id")
	resourceID := stringField(firstElement(raw, "Resources"), "Id")

	f.SourceID = id
	f.ResourceID = firstNonEmpty(resourceID, id)
	f.ResourceType = stringField(raw, "ProductName")
	f.Severity = ParseSeverity(stringField(mapField(raw, "Severity"), "Label"))
	f.Title = stringField(raw, "Title")
	f.Description = stringField(raw, "Description")

	recommendation := mapField(mapField(raw, "Remediation"), "Recommendation")
	f.Recommendation = optionalString(stringField(recommendation, "Text"))
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	}
	return ""
}

func mapField(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]interface{})
	return v
}

func firstElement(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []interface{}:
		if len(v) > 0 {
			first, _ := v[0].(map[string]interface{})
			return first
		}
	case []map[string]interface{}:
		if len(v) > 0 {
			return v[0]
		}
	}
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
