package engine

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	effectAllow = "Allow"
	wildcard    = "*"
)

// PolicyDocument is an IAM policy document. Statements are kept loosely
// typed so a malformed statement can be skipped without rejecting the
// whole document.
type PolicyDocument struct {
	Version    string
	Statements []map[string]interface{}
}

// ParsePolicyDocument decodes a policy document as returned by
// GetPolicyVersion, which URL-encodes the JSON body. Statement may be a
// single object or a list; entries that are not objects are kept as nil.
func ParsePolicyDocument(raw string) (PolicyDocument, error) {
	body := raw
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		decoded, err := url.QueryUnescape(raw)
		if err != nil {
			return PolicyDocument{}, fmt.Errorf("decode policy document: %w", err)
		}
		body = decoded
	}

	var doc struct {
		Version   json.RawMessage `json:"Version"`
		Statement json.RawMessage `json:"Statement"`
	}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return PolicyDocument{}, fmt.Errorf("parse policy document: %w", err)
	}

	// A non-string Version is left empty; only statements decide the outcome.
	var out PolicyDocument
	_ = json.Unmarshal(doc.Version, &out.Version)
	if len(doc.Statement) == 0 {
		return out, nil
	}

	var single map[string]interface{}
	if err := json.Unmarshal(doc.Statement, &single); err == nil && single != nil {
		out.Statements = []map[string]interface{}{single}
		return out, nil
	}

	var list []interface{}
	if err := json.Unmarshal(doc.Statement, &list); err != nil {
		// Statement is neither an object nor a list: nothing can match.
		return out, nil
	}
	for _, item := range list {
		stmt, _ := item.(map[string]interface{})
		out.Statements = append(out.Statements, stmt)
	}
	return out, nil
}

// IsOverlyPermissive reports whether any statement allows every action or
// every resource. Only an exact "*" counts as a wildcard; in list-valued
// fields the list must contain the exact "*" element. Malformed statements
// never match.
func IsOverlyPermissive(doc PolicyDocument) bool {
	for _, stmt := range doc.Statements {
		if stmt == nil {
			continue
		}
		effect, ok := stmt["Effect"].(string)
		if !ok || effect != effectAllow {
			continue
		}
		if isWildcard(stmt["Action"]) || isWildcard(stmt["Resource"]) {
			return true
		}
	}
	return false
}

func isWildcard(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == wildcard
	case []interface{}:
		for _, item := range val {
			if s, ok := item.(string); ok && s == wildcard {
				return true
			}
		}
	case []string:
		for _, s := range val {
			if s == wildcard {
				return true
			}
		}
	}
	return false
}
