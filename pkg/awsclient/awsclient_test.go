package awsclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/config"
)

func TestNewClientsRequiresRegion(t *testing.T) {
	_, err := NewClients(context.Background(), config.AWS{})
	assert.ErrorIs(t, err, ErrNoRegion)
}

func TestNewClientsRejectsHalfAKeyPair(t *testing.T) {
	_, err := NewClients(context.Background(), config.AWS{Region: "us-east-1", AccessKeyID: "AKIDEXAMPLE"})
	assert.ErrorIs(t, err, ErrIncompleteKeyPair)
}

func TestNewClientsWithStaticCredentials(t *testing.T) {
	ctx := context.Background()
	clients, err := NewClients(ctx, config.AWS{
		Region:          "eu-west-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:4566",
		MaxAttempts:     2,
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", clients.Region)
	assert.NotNil(t, clients.IAM)
	assert.NotNil(t, clients.SecurityHub)

	cfg, err := LoadAWSConfig(ctx, config.AWS{Region: "eu-west-1", AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"})
	require.NoError(t, err)
	creds, err := cfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)
}
