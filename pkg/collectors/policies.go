package collectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/go-logr/logr"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/awsclient"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

const (
	PolicyFindingTitle   = "Overly permissive IAM policy detected"
	PolicyRecommendation = "Review and restrict policy permissions"
	PolicySeverity       = engine.SeverityHigh
)

var errNoDefaultVersion = errors.New("policy has no default version")

// PolicyCollector flags customer managed IAM policies whose default version
// allows every action or every resource.
type PolicyCollector struct {
	Client awsclient.IAMAPI
	Log    logr.Logger
	Now    Clock
}

func NewPolicyCollector(client awsclient.IAMAPI, log logr.Logger) *PolicyCollector {
	return &PolicyCollector{
		Client: client,
		Log:    log.WithName("collector").WithValues("source", "iam-policies"),
	}
}

func (c *PolicyCollector) Name() string {
	return "iam-policies"
}

func (c *PolicyCollector) Collect(ctx context.Context) ([]engine.Finding, error) {
	observed := c.Now.now()
	set := engine.NewFindingSet()
	guard := pageGuard{}

	input := &iam.ListPoliciesInput{Scope: iamtypes.PolicyScopeTypeLocal}
	for page := 1; ; page++ {
		out, err := c.Client.ListPolicies(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list policies (page %d): %w", page, err)
		}

		for _, p := range out.Policies {
			permissive, err := c.evaluate(ctx, p)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				c.Log.V(1).Info("Skipping policy", "arn", aws.ToString(p.Arn), "reason", err.Error())
				continue
			}
			if !permissive {
				continue
			}

			f := engine.Normalize(policyRecord(p), engine.SourcePolicy, observed)
			if f.ResourceID == "" {
				continue
			}
			set.Add(f)
		}

		marker := aws.ToString(out.Marker)
		if marker == "" {
			break
		}
		if guard.seen(marker) {
			return nil, fmt.Errorf("list policies: marker %q repeated", marker)
		}
		input = &iam.ListPoliciesInput{
			Scope:  iamtypes.PolicyScopeTypeLocal,
			Marker: aws.String(marker),
		}
	}

	c.Log.V(1).Info("Policy evaluation complete", "findings", set.Len())
	return set.Findings(), nil
}

// evaluate fetches the default version of one policy and runs the wildcard
// check on it. Any error means the policy is skipped.
func (c *PolicyCollector) evaluate(ctx context.Context, p iamtypes.Policy) (bool, error) {
	if p.Arn == nil || p.DefaultVersionId == nil {
		return false, errNoDefaultVersion
	}

	out, err := c.Client.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: p.Arn,
		VersionId: p.DefaultVersionId,
	})
	if err != nil {
		return false, fmt.Errorf("get policy version: %w", err)
	}
	if out.PolicyVersion == nil || out.PolicyVersion.Document == nil {
		return false, errNoDefaultVersion
	}

	doc, err := engine.ParsePolicyDocument(aws.ToString(out.PolicyVersion.Document))
	if err != nil {
		return false, err
	}
	return engine.IsOverlyPermissive(doc), nil
}

// policyRecord builds the raw policy-finding record the normalizer reads.
func policyRecord(p iamtypes.Policy) map[string]interface{} {
	name := aws.ToString(p.PolicyName)
	return map[string]interface{}{
		engine.PolicyKeyID:             aws.ToString(p.PolicyId),
		engine.PolicyKeyName:           name,
		engine.PolicyKeyArn:            aws.ToString(p.Arn),
		engine.PolicyKeySeverity:       PolicySeverity.String(),
		engine.PolicyKeyFinding:        PolicyFindingTitle,
		engine.PolicyKeyDescription:    fmt.Sprintf("Policy %s allows all actions or all resources", name),
		engine.PolicyKeyRecommendation: PolicyRecommendation,
	}
}
