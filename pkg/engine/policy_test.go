package engine

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) PolicyDocument {
	t.Helper()
	doc, err := ParsePolicyDocument(raw)
	require.NoError(t, err)
	return doc
}

func TestIsOverlyPermissive(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want bool
	}{
		{
			name: "no statements",
			doc:  `{"Version":"2012-10-17","Statement":[]}`,
			want: false,
		},
		{
			name: "missing statement key",
			doc:  `{"Version":"2012-10-17"}`,
			want: false,
		},
		{
			name: "allow wildcard action",
			doc:  `{"Statement":[{"Effect":"Allow","Action":"*","Resource":"arn:aws:s3:::bucket"}]}`,
			want: true,
		},
		{
			name: "allow wildcard resource",
			doc:  `{"Statement":[{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}]}`,
			want: true,
		},
		{
			name: "single statement object",
			doc:  `{"Statement":{"Effect":"Allow","Action":"*","Resource":"*"}}`,
			want: true,
		},
		{
			name: "deny wildcard is fine",
			doc:  `{"Statement":[{"Effect":"Deny","Action":"*","Resource":"*"}]}`,
			want: false,
		},
		{
			name: "scoped allow",
			doc:  `{"Statement":[{"Effect":"Allow","Action":["s3:GetObject","s3:PutObject"],"Resource":["arn:aws:s3:::bucket/*"]}]}`,
			want: false,
		},
		{
			name: "pattern wildcard is not exact",
			doc:  `{"Statement":[{"Effect":"Allow","Action":"s3:*","Resource":"arn:aws:s3:::*"}]}`,
			want: false,
		},
		{
			name: "list containing exact wildcard",
			doc:  `{"Statement":[{"Effect":"Allow","Action":["s3:GetObject","*"],"Resource":"arn:aws:s3:::bucket"}]}`,
			want: true,
		},
		{
			name: "effect is case sensitive",
			doc:  `{"Statement":[{"Effect":"allow","Action":"*","Resource":"*"}]}`,
			want: false,
		},
		{
			name: "malformed statements around a wildcard allow",
			doc:  `{"Statement":["junk",42,{"Effect":7},{"Effect":"Allow","Action":"*"},null]}`,
			want: true,
		},
		{
			name: "fully malformed statements",
			doc:  `{"Statement":["junk",{"Effect":["Allow"],"Action":"*"},{"Action":"*","Resource":"*"}]}`,
			want: false,
		},
		{
			name: "statement is a scalar",
			doc:  `{"Statement":"Allow everything"}`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverlyPermissive(mustParse(t, tt.doc)))
		})
	}
}

func TestIsOverlyPermissiveZeroValue(t *testing.T) {
	assert.False(t, IsOverlyPermissive(PolicyDocument{}))
	assert.False(t, IsOverlyPermissive(PolicyDocument{Statements: []map[string]interface{}{nil, {}}}))
}

func TestParsePolicyDocumentURLEncoded(t *testing.T) {
	raw := url.QueryEscape(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`)

	doc := mustParse(t, raw)
	assert.Equal(t, "2012-10-17", doc.Version)
	require.Len(t, doc.Statements, 1)
	assert.True(t, IsOverlyPermissive(doc))
}

func TestParsePolicyDocumentIgnoresNonStringVersion(t *testing.T) {
	doc := mustParse(t, `{"Version":2012,"Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`)
	assert.Empty(t, doc.Version)
	assert.True(t, IsOverlyPermissive(doc))

	doc = mustParse(t, `{"Version":{"v":1},"Statement":{"Effect":"Allow","Action":"s3:GetObject","Resource":"*"}}`)
	assert.True(t, IsOverlyPermissive(doc))
}

func TestParsePolicyDocumentRejectsGarbage(t *testing.T) {
	_, err := ParsePolicyDocument("%7Bnot-json")
	assert.Error(t, err)

	_, err = ParsePolicyDocument("%zz")
	assert.Error(t, err)
}
