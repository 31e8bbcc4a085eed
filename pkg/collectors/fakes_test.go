package collectors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	hubtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeIAM struct {
	mu         sync.Mutex
	pages      map[string]*iam.ListPoliciesOutput
	documents  map[string]string
	listErr    map[string]error
	versionErr map[string]error
	listInputs []*iam.ListPoliciesInput
}

func (f *fakeIAM) ListPolicies(ctx context.Context, in *iam.ListPoliciesInput, _ ...func(*iam.Options)) (*iam.ListPoliciesOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.listInputs = append(f.listInputs, in)
	f.mu.Unlock()

	marker := aws.ToString(in.Marker)
	if err := f.listErr[marker]; err != nil {
		return nil, err
	}
	out, ok := f.pages[marker]
	if !ok {
		return nil, fmt.Errorf("unexpected marker %q", marker)
	}
	return out, nil
}

func (f *fakeIAM) GetPolicyVersion(ctx context.Context, in *iam.GetPolicyVersionInput, _ ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	arn := aws.ToString(in.PolicyArn)
	if err := f.versionErr[arn]; err != nil {
		return nil, err
	}
	doc, ok := f.documents[arn]
	if !ok {
		return nil, errors.New("NoSuchEntity")
	}
	return &iam.GetPolicyVersionOutput{
		PolicyVersion: &iamtypes.PolicyVersion{
			Document:  aws.String(doc),
			VersionId: in.VersionId,
		},
	}, nil
}

func policyArn(name string) string {
	return "arn:aws:iam::123456789012:policy/" + name
}

func testPolicy(name string) iamtypes.Policy {
	return iamtypes.Policy{
		PolicyId:         aws.String("ANPA" + name),
		PolicyName:       aws.String(name),
		Arn:              aws.String(policyArn(name)),
		DefaultVersionId: aws.String("v1"),
	}
}

type fakeHub struct {
	mu     sync.Mutex
	pages  map[string]*securityhub.GetFindingsOutput
	errs   map[string]error
	inputs []*securityhub.GetFindingsInput
}

func (f *fakeHub) GetFindings(ctx context.Context, in *securityhub.GetFindingsInput, _ ...func(*securityhub.Options)) (*securityhub.GetFindingsOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	token := aws.ToString(in.NextToken)
	if err := f.errs[token]; err != nil {
		return nil, err
	}
	out, ok := f.pages[token]
	if !ok {
		return nil, fmt.Errorf("unexpected token %q", token)
	}
	return out, nil
}

func hubFinding(id, resource, title, label string) hubtypes.AwsSecurityFinding {
	f := hubtypes.AwsSecurityFinding{
		Id:          aws.String(id),
		ProductName: aws.String("GuardDuty"),
		Title:       aws.String(title),
		Description: aws.String(title + " description"),
		Severity:    &hubtypes.Severity{Label: hubtypes.SeverityLabel(label)},
	}
	if resource != "" {
		f.Resources = []hubtypes.Resource{{Id: aws.String(resource), Type: aws.String("AwsEc2Instance")}}
	}
	return f
}
