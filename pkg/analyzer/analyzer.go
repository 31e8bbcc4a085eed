// Package analyzer fans out to the collectors, merges what succeeded and
// derives the scan, alert and score views.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/cache"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/collectors"
	"github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/engine"
)

const tracerName = "github.com/hasim-hairlahovic/AWS-Cybersecurity-Analyzer/pkg/analyzer"

const (
	scanKey   = "scan"
	alertsKey = "alerts"
)

// ErrUnavailable is returned when every source an operation depends on
// failed. Callers must not treat it as "no findings".
var ErrUnavailable = errors.New("security data unavailable")

// Analyzer runs the collectors and projects their findings.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	policies collectors.Collector
	findings collectors.Collector

	cache      cache.Cache
	cacheScope string
	cacheTTL   time.Duration

	timeout time.Duration
	log     logr.Logger
	tracer  trace.Tracer
}

type Option func(*Analyzer)

// WithCache stores successful Scan and Alerts results under scope for ttl.
func WithCache(c cache.Cache, scope string, ttl time.Duration) Option {
	return func(a *Analyzer) {
		a.cache = c
		a.cacheScope = scope
		a.cacheTTL = ttl
	}
}

// WithTimeout bounds every operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

func WithLogger(log logr.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(a *Analyzer) { a.tracer = tp.Tracer(tracerName) }
}

// New builds an Analyzer over the policy collector and the Security Hub
// findings collector.
func New(policies, findings collectors.Collector, opts ...Option) *Analyzer {
	a := &Analyzer{
		policies: policies,
		findings: findings,
		cache:    cache.Nop{},
		log:      logr.Discard(),
		tracer:   otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithName("analyzer")
	return a
}

// Scan returns the merged findings of both collectors as scan results,
// policy findings first. A failed collector contributes nothing; if both
// fail the result is ErrUnavailable.
func (a *Analyzer) Scan(ctx context.Context) ([]engine.ScanResult, error) {
	ctx, span := a.tracer.Start(ctx, "analyzer.Scan")
	defer span.End()

	var results []engine.ScanResult
	if a.cached(ctx, scanKey, &results) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return results, nil
	}

	findings, err := a.gather(ctx, a.policies, a.findings)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	results = engine.ScanResults(findings)
	span.SetAttributes(attribute.Int("results", len(results)))
	a.store(ctx, scanKey, results)
	return results, nil
}

// Alerts returns the Security Hub findings as alerts. Policy findings are
// not part of this view. An unreachable Security Hub is an error here, not an
// empty list, so Score can tell "no alerts" from "no data".
func (a *Analyzer) Alerts(ctx context.Context) ([]engine.Alert, error) {
	ctx, span := a.tracer.Start(ctx, "analyzer.Alerts")
	defer span.End()

	var alerts []engine.Alert
	if a.cached(ctx, alertsKey, &alerts) {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return alerts, nil
	}

	findings, err := a.gather(ctx, a.findings)
	if err != nil {
		failSpan(span, err)
		return nil, err
	}

	alerts = engine.Alerts(findings)
	span.SetAttributes(attribute.Int("alerts", len(alerts)))
	a.store(ctx, alertsKey, alerts)
	return alerts, nil
}

// Score reduces the current alerts to a posture score. It returns 0 when
// the alerts cannot be retrieved.
func (a *Analyzer) Score(ctx context.Context) float64 {
	alerts, err := a.Alerts(ctx)
	if err != nil {
		a.log.Error(err, "Alerts unavailable, reporting a score of 0")
		return 0
	}
	return engine.Score(alerts)
}

// Compliance evaluates the current scan results against profile.
func (a *Analyzer) Compliance(ctx context.Context, profile engine.Profile) (engine.ComplianceReport, error) {
	results, err := a.Scan(ctx)
	if err != nil {
		return engine.ComplianceReport{}, err
	}
	return profile.Evaluate(results), nil
}

// Refresh drops cached results and recomputes them. It returns the new
// score.
func (a *Analyzer) Refresh(ctx context.Context) float64 {
	keys := []string{cache.Key(a.cacheScope, scanKey), cache.Key(a.cacheScope, alertsKey)}
	if err := a.cache.Delete(ctx, keys...); err != nil {
		a.log.Error(err, "Failed to invalidate cached results")
	}
	if _, err := a.Scan(ctx); err != nil {
		a.log.Error(err, "Scheduled scan failed")
	}
	return a.Score(ctx)
}

type outcome struct {
	source   string
	findings []engine.Finding
	err      error
}

// gather runs the collectors concurrently and merges their findings in
// argument order.
func (a *Analyzer) gather(ctx context.Context, cs ...collectors.Collector) ([]engine.Finding, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	outcomes := make([]outcome, len(cs))
	var g errgroup.Group
	for i, c := range cs {
		i, c := i, c
		g.Go(func() error {
			outcomes[i] = a.collect(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return merge(outcomes)
}

func (a *Analyzer) collect(ctx context.Context, c collectors.Collector) (o outcome) {
	ctx, span := a.tracer.Start(ctx, "collector."+c.Name(),
		trace.WithAttributes(attribute.String("collector", c.Name())))
	defer span.End()

	o.source = c.Name()
	defer func() {
		if r := recover(); r != nil {
			o = outcome{source: c.Name(), err: fmt.Errorf("collector panicked: %v", r)}
			failSpan(span, o.err)
			a.log.Error(o.err, "Collector failed, continuing without its findings", "source", c.Name())
		}
	}()

	findings, err := c.Collect(ctx)
	if err != nil {
		failSpan(span, err)
		a.log.Error(err, "Collector failed, continuing without its findings", "source", c.Name())
		o.err = err
		return o
	}

	span.SetAttributes(attribute.Int("findings", len(findings)))
	a.log.V(1).Info("Collector finished", "source", c.Name(), "findings", len(findings))
	o.findings = findings
	return o
}

// merge combines successful outcomes in order, keeping the first of any
// (resource id, finding) pair seen across sources. When none succeeded it
// returns ErrUnavailable wrapping every collector error.
func merge(outcomes []outcome) ([]engine.Finding, error) {
	set := engine.NewFindingSet()
	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.source, o.err))
			continue
		}
		set.Add(o.findings...)
	}
	if len(outcomes) > 0 && len(errs) == len(outcomes) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
	}
	return set.Findings(), nil
}

func (a *Analyzer) cached(ctx context.Context, name string, dst interface{}) bool {
	hit, err := a.cache.Get(ctx, cache.Key(a.cacheScope, name), dst)
	if err != nil {
		a.log.Error(err, "Cache lookup failed, scanning live", "key", name)
		return false
	}
	return hit
}

func (a *Analyzer) store(ctx context.Context, name string, v interface{}) {
	if err := a.cache.Set(ctx, cache.Key(a.cacheScope, name), v, a.cacheTTL); err != nil {
		a.log.Error(err, "Failed to cache results", "key", name)
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
