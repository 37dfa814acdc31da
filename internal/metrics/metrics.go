// Package metrics exposes decision telemetry through OpenTelemetry.
// All recorders are nil-safe: without a MeterProvider they are no-ops.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xbcsmith/xzepr-sub005/types"
)

// MeterName is the name used for the authorization metrics meter
const MeterName = "github.com/xbcsmith/xzepr-sub005/authz"

// Metrics holds the instruments for decision, cache, and breaker telemetry
type Metrics struct {
	decisions    metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	breakerTrips metric.Int64Counter
}

// New creates a Metrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func New(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MeterName)

	decisions, err := meter.Int64Counter(
		"xzepr_authz_decisions_total",
		metric.WithDescription("Authorization decisions by source and outcome"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"xzepr_authz_cache_hits_total",
		metric.WithDescription("Decision cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"xzepr_authz_cache_misses_total",
		metric.WithDescription("Decision cache misses, including version mismatches"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	breakerTrips, err := meter.Int64Counter(
		"xzepr_authz_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		decisions:    decisions,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		breakerTrips: breakerTrips,
	}, nil
}

// RecordDecision counts one decision by source and outcome
func (m *Metrics) RecordDecision(ctx context.Context, d types.Decision) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(d.Source)),
		attribute.Bool("allow", d.Allow),
	))
}

// RecordCacheLookup counts one cache lookup outcome
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	if hit {
		if m.cacheHits != nil {
			m.cacheHits.Add(ctx, 1)
		}
		return
	}
	if m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1)
	}
}

// RecordBreakerTransition counts one breaker state transition
func (m *Metrics) RecordBreakerTransition(ctx context.Context, from, to string) {
	if m == nil || m.breakerTrips == nil {
		return
	}
	m.breakerTrips.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
	))
}
