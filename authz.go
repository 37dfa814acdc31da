// Package authz decides if a subject may act on an event, event receiver,
// or event receiver group. Decisions come from an external policy engine
// behind a circuit breaker; when the engine is slow or down they come from
// an in-process evaluator mirroring the same rules. Every decision is
// cached under a resource-version-qualified key and appended to an audit
// trail.
package authz

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"go.opentelemetry.io/otel/metric"

	"github.com/xbcsmith/xzepr-sub005/internal/audit"
	"github.com/xbcsmith/xzepr-sub005/internal/authorizer"
	"github.com/xbcsmith/xzepr-sub005/internal/breaker"
	"github.com/xbcsmith/xzepr-sub005/internal/cache"
	"github.com/xbcsmith/xzepr-sub005/internal/metrics"
	"github.com/xbcsmith/xzepr-sub005/internal/policy"
	"github.com/xbcsmith/xzepr-sub005/types"
)

// New creates an Authorizer
func New(ctx context.Context, opts ...Option) (types.Authorizer, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.log.GetSink() == nil {
		cfg.log = stdr.New(log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile))
	}

	if cfg.registry == nil {
		return nil, types.ErrNoRegistry
	}

	client := cfg.client
	if client == nil {
		if cfg.endpoint == "" {
			return nil, types.ErrNoPolicyClient
		}
		client = policy.NewHTTPClient(cfg.endpoint, cfg.clientTimeout)
	}

	m, e := metrics.New(cfg.meterProvider)
	if e != nil {
		return nil, fmt.Errorf("init authorization metrics failed: %w", e)
	}

	brk := breaker.New(
		breaker.WithThreshold(cfg.breakerThreshold),
		breaker.WithCoolDown(cfg.breakerCoolDown),
		breaker.WithOnStateChange(func(from, to breaker.State) {
			cfg.log.V(2).Info("circuit breaker transition", "from", from, "to", to)
			m.RecordBreakerTransition(ctx, from.String(), to.String())
		}),
	)

	rec := audit.NewRecorder(cfg.sink, cfg.log.WithName("audit"), func() int64 {
		return time.Now().UnixNano()
	})

	return authorizer.New(
		cfg.registry,
		client,
		brk,
		cache.New(cfg.cacheSize, cfg.cacheTTL),
		rec,
		m,
		cfg.log.WithName("authz"),
	), nil
}

// WithResourceRegistry sets the read-only accessor over persisted
// ownership and membership facts. Required.
func WithResourceRegistry(r types.ResourceRegistry) Option {
	return func(cfg *Config) {
		cfg.registry = r
	}
}

// WithPolicyEndpoint points the client at the external policy engine.
// Either this or WithPolicyClient is required.
func WithPolicyEndpoint(url string) Option {
	return func(cfg *Config) {
		cfg.endpoint = url
	}
}

// WithPolicyClient injects an already-built policy client, mostly for tests
func WithPolicyClient(c types.PolicyClient) Option {
	return func(cfg *Config) {
		cfg.client = c
	}
}

// WithPolicyTimeout bounds a single policy engine call.
// Enforced even when the breaker is closed, so one slow call cannot
// starve its caller.
func WithPolicyTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.clientTimeout = d
	}
}

// WithBreaker tunes the circuit breaker: trip after threshold consecutive
// failures, probe again after coolDown
func WithBreaker(threshold int, coolDown time.Duration) Option {
	return func(cfg *Config) {
		cfg.breakerThreshold = threshold
		cfg.breakerCoolDown = coolDown
	}
}

// WithCache bounds the decision cache to size entries of at most ttl each
func WithCache(size int, ttl time.Duration) Option {
	return func(cfg *Config) {
		cfg.cacheSize = size
		cfg.cacheTTL = ttl
	}
}

// WithAuditSink sets the append-only decision trail.
// Decisions are logged through the configured logger if not set.
func WithAuditSink(s types.AuditSink) Option {
	return func(cfg *Config) {
		cfg.sink = s
	}
}

// WithMeterProvider enables decision, cache, and breaker metrics
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(cfg *Config) {
		cfg.meterProvider = p
	}
}

// WithLogger sets logger for authorization components
func WithLogger(l logr.Logger) Option {
	return func(cfg *Config) {
		cfg.log = l
	}
}

// Config works together with Option to control the initialization of the authorizer
type Config struct {
	registry         types.ResourceRegistry
	client           types.PolicyClient
	endpoint         string
	clientTimeout    time.Duration
	breakerThreshold int
	breakerCoolDown  time.Duration
	cacheSize        int
	cacheTTL         time.Duration
	sink             types.AuditSink
	meterProvider    metric.MeterProvider
	log              logr.Logger
}

// Option controls how to init an authorizer
type Option func(*Config)
