package types

import "context"

// PolicyClient evaluates a request against the external policy engine.
// The engine is opaque: the client only translates between these types and
// the engine's wire schema. It touches neither the cache nor the breaker.
type PolicyClient interface {
	Evaluate(ctx context.Context, req Request, facts ResourceFacts) (Decision, error)
}
