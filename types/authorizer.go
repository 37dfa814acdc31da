package types

import "context"

// Authorizer is the top level interface for end use.
// It decides if anyone can do anything to some resource, with knowledge of
// resource ownership, group membership, and the external policy.
//
// Authorize always returns a Decision unless the resource cannot be resolved
// (ErrNotFound) or the request is malformed (ErrInvalidRequest). A degraded
// policy engine is not an error: the decision is computed by the in-process
// fallback evaluator and tagged SourceFallback.
type Authorizer interface {
	Authorize(ctx context.Context, req Request) (Decision, error)
}
