package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemediationEngineLoadsBuiltins(t *testing.T) {
	e, err := NewRemediationEngine()
	require.NoError(t, err)

	list := e.ListTemplates()
	require.NotEmpty(t, list)
	assert.Contains(t, list, "iam-wildcard-policy: Scope down an overly permissive IAM policy")
	for _, tmpl := range e.Templates {
		assert.NotEmpty(t, tmpl.FixCommand, tmpl.ID)
		assert.NotEmpty(t, tmpl.RollbackCommand, tmpl.ID)
	}
}

func TestRemediationMatch(t *testing.T) {
	e, err := NewRemediationEngine()
	require.NoError(t, err)

	tmpl, ok := e.Match(ScanResult{ResourceID: "ANPA1", ResourceType: ResourceTypePolicy, Finding: "Overly permissive IAM policy detected"})
	require.True(t, ok)
	assert.Equal(t, "iam-wildcard-policy", tmpl.ID)

	tmpl, ok = e.Match(ScanResult{ResourceID: "sg-1", ResourceType: "AwsEc2SecurityGroup", Finding: "Security group allows unrestricted access to port 22"})
	require.True(t, ok)
	assert.Equal(t, "security-group-ingress", tmpl.ID)

	_, ok = e.Match(ScanResult{ResourceID: "i-1", ResourceType: "Inspector", Finding: "CVE-2024-0001"})
	assert.False(t, ok)
}

func TestPlanFor(t *testing.T) {
	e, err := NewRemediationEngine()
	require.NoError(t, err)

	plan, err := e.PlanFor(ScanResult{ResourceID: "ANPA1", ResourceType: ResourceTypePolicy, Finding: "Overly permissive IAM policy detected"})
	require.NoError(t, err)
	assert.Contains(t, plan, "[FIX PLAN]")
	assert.Contains(t, plan, "Risk: HIGH")
	assert.Contains(t, plan, "policy-ANPA1.json")
	assert.Contains(t, plan, "Rollback:\naws iam set-default-policy-version")

	_, err = e.PlanFor(ScanResult{ResourceID: "i-1", Finding: "CVE-2024-0001"})
	assert.ErrorIs(t, err, ErrNoRemediation)
}

func TestGeneratePlanErrors(t *testing.T) {
	e, err := NewRemediationEngine()
	require.NoError(t, err)

	_, err = e.GeneratePlan("does-not-exist", nil)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = e.GeneratePlan("iam-wildcard-policy", map[string]string{})
	assert.EqualError(t, err, "missing required variable: resource_id")
}

func TestLoadTemplatesFromDir(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`id: kms-rotation
name: Enable KMS key rotation
issue: Customer managed key rotation disabled
risk: MEDIUM
keywords: [key rotation]
variables: [resource_id]
fix_command: aws kms enable-key-rotation --key-id {{.resource_id}}
validation_command: aws kms get-key-rotation-status --key-id {{.resource_id}}
rollback_command: aws kms disable-key-rotation --key-id {{.resource_id}}
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kms.yaml"), body, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o600))

	e, err := NewRemediationEngine()
	require.NoError(t, err)
	loaded, err := e.LoadTemplates(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"kms-rotation"}, loaded)

	plan, err := e.PlanFor(ScanResult{ResourceID: "key-1", Finding: "KMS key rotation is disabled"})
	require.NoError(t, err)
	assert.Contains(t, plan, "aws kms enable-key-rotation --key-id key-1")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: no id"), 0o600))
	_, err = e.LoadTemplates(dir)
	assert.Error(t, err)
}
