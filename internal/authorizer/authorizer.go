// Package authorizer composes the registry, cache, breaker-guarded policy
// client, fallback evaluator, and audit trail behind one Authorize call.
package authorizer

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/xbcsmith/xzepr-sub005/internal/audit"
	"github.com/xbcsmith/xzepr-sub005/internal/breaker"
	"github.com/xbcsmith/xzepr-sub005/internal/cache"
	"github.com/xbcsmith/xzepr-sub005/internal/metrics"
	"github.com/xbcsmith/xzepr-sub005/internal/rbac"
	"github.com/xbcsmith/xzepr-sub005/types"
)

var _ types.Authorizer = (*Service)(nil)

// Service is the authorization service. One instance serves all requests
// of a process: the cache and the breaker inside it are shared state, the
// registry and audit sink are injected capabilities.
type Service struct {
	registry types.ResourceRegistry
	client   types.PolicyClient
	breaker  *breaker.Breaker
	cache    *cache.Cache
	audit    *audit.Recorder
	metrics  *metrics.Metrics
	log      logr.Logger
}

// New creates a Service from already-constructed parts
func New(
	registry types.ResourceRegistry,
	client types.PolicyClient,
	brk *breaker.Breaker,
	c *cache.Cache,
	rec *audit.Recorder,
	m *metrics.Metrics,
	log logr.Logger,
) *Service {
	return &Service{
		registry: registry,
		client:   client,
		breaker:  brk,
		cache:    c,
		audit:    rec,
		metrics:  m,
		log:      log,
	}
}

// Authorize decides one request. Exactly one decision is audited per call:
// either the cache hit, or the one fresh evaluation that produced the
// result. Only an unresolvable resource or a malformed request surface as
// errors; a degraded policy engine is absorbed by the fallback evaluator.
func (s *Service) Authorize(ctx context.Context, req types.Request) (types.Decision, error) {
	s.log.V(6).Info("authorize", "user", req.Subject.UserID, "action", req.Action, "resource", req.Resource.ID)

	if e := req.Validate(); e != nil {
		return types.Decision{}, e
	}

	// One consistent read serves the whole call: the version keys the
	// cache entry, and the ownership facts it belongs with feed the
	// policy input and the fallback evaluator. A mutation racing this
	// call at most ages the decision by one request latency; the next
	// call reads the bumped version and misses the cache.
	facts, e := s.registry.FactsOf(ctx, req.Resource.ID)
	if e != nil {
		return types.Decision{}, fmt.Errorf("resolve %s: %w", req.Resource.ID, e)
	}

	key := cache.KeyFor(req, facts.Version)
	if d, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(ctx, true)
		d.Source = types.SourceCache
		return s.finish(ctx, req, d), nil
	}
	s.metrics.RecordCacheLookup(ctx, false)

	d, e := breaker.Do(s.breaker, func() (types.Decision, error) {
		return s.client.Evaluate(ctx, req, facts)
	})
	if e == nil {
		d.Source = types.SourcePolicy
		s.cache.Put(key, d)
		return s.finish(ctx, req, d), nil
	}

	// Breaker open, engine down, or its answer unusable: decide locally.
	// Malformed responses land here too, never as a blind allow or deny.
	s.log.V(4).Info("policy engine unavailable, using fallback evaluator",
		"resource", req.Resource.ID, "cause", e.Error())

	d = rbac.Evaluate(req, facts)
	d.Source = types.SourceFallback
	s.cache.Put(key, d)
	return s.finish(ctx, req, d), nil
}

// finish audits and counts the decision on its way out
func (s *Service) finish(ctx context.Context, req types.Request, d types.Decision) types.Decision {
	s.metrics.RecordDecision(ctx, d)
	s.audit.Record(ctx, req, d)
	return d
}
