// Package collectors reads findings from the AWS upstreams and normalizes
// them into engine.Finding values. Each collector owns exactly one source
// and one client.
package collectors

import (
	"context"
	"time"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

// Collector retrieves findings from a single upstream.
//
// Collect returns either the complete de-duplicated list or an error, never
// both. A record that cannot be evaluated is skipped without failing the
// run.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]engine.Finding, error)
}

// Clock returns the observation time stamped on a run's findings.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// pageGuard stops pagination loops that are handed the same continuation
// token twice.
type pageGuard map[string]struct{}

func (g pageGuard) seen(token string) bool {
	if _, ok := g[token]; ok {
		return true
	}
	g[token] = struct{}{}
	return false
}
