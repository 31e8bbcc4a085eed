// Package awsclient builds the long-lived AWS SDK clients the collectors
// read from. Clients are created once per process and shared read-only.
package awsclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/config"
)

var (
	ErrNoRegion          = errors.New("aws region is required")
	ErrIncompleteKeyPair = errors.New("aws access key id and secret access key must be set together")
)

// IAMAPI is the subset of the IAM API used to find overly permissive
// customer managed policies.
type IAMAPI interface {
	ListPolicies(ctx context.Context, params *iam.ListPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListPoliciesOutput, error)
	GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
}

// SecurityHubAPI is the subset of the Security Hub API used to list findings.
type SecurityHubAPI interface {
	GetFindings(ctx context.Context, params *securityhub.GetFindingsInput, optFns ...func(*securityhub.Options)) (*securityhub.GetFindingsOutput, error)
}

// Clients holds one handle per upstream. Each collector gets its own.
type Clients struct {
	Region      string
	IAM         IAMAPI
	SecurityHub SecurityHubAPI
}

// LoadAWSConfig resolves an SDK config from the analyzer settings. Static
// keys win over the default credential chain; a profile selects a shared
// config section.
func LoadAWSConfig(ctx context.Context, c config.AWS) (aws.Config, error) {
	if c.Region == "" {
		return aws.Config{}, ErrNoRegion
	}
	if (c.AccessKeyID == "") != (c.SecretAccessKey == "") {
		return aws.Config{}, ErrIncompleteKeyPair
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(c.Region),
	}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}
	if c.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}
	if c.MaxAttempts > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(c.MaxAttempts))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewClients constructs the IAM and Security Hub clients.
func NewClients(ctx context.Context, c config.AWS) (*Clients, error) {
	cfg, err := LoadAWSConfig(ctx, c)
	if err != nil {
		return nil, err
	}

	iamClient := iam.NewFromConfig(cfg, func(o *iam.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})
	hubClient := securityhub.NewFromConfig(cfg, func(o *securityhub.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	})

	return &Clients{
		Region:      cfg.Region,
		IAM:         iamClient,
		SecurityHub: hubClient,
	}, nil
}
