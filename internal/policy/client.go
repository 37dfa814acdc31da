// Package policy calls the external policy engine over its request/response
// protocol. The engine is an opaque evaluator: this package only translates
// between the domain types and the wire schema.
//
// The client does not touch the cache or the circuit breaker; composing
// those is the authorizer's job.
package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xbcsmith/xzepr-sub005/types"
)

// client errors, all of which count as circuit breaker failures
var (
	// ErrTimeout: the engine did not answer within the configured timeout
	ErrTimeout = errors.New("policy evaluation timed out")
	// ErrUnreachable: the engine could not be reached or refused the call
	ErrUnreachable = errors.New("policy engine unreachable")
	// ErrMalformed: the engine answered, but the response is missing
	// required fields. Treated as a hard error, never as a deny.
	ErrMalformed = errors.New("malformed policy response")
)

const (
	// DefaultTimeout bounds a single evaluation call
	DefaultTimeout = 5 * time.Second

	// maxResponseSize guards against a misbehaving engine streaming
	// unbounded output
	maxResponseSize = 1 << 20
)

var _ types.PolicyClient = (*HTTPClient)(nil)

// HTTPClient is the production PolicyClient, posting evaluation inputs to
// a policy engine endpoint
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient creates a client for the engine at endpoint.
// If timeout is 0, DefaultTimeout is used. The timeout bounds every call
// even when the caller's context carries no deadline of its own.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Evaluate serializes the request into the engine's input schema, issues
// the call, and maps the result document back onto a Decision
func (c *HTTPClient) Evaluate(ctx context.Context, req types.Request, facts types.ResourceFacts) (types.Decision, error) {
	body, e := json.Marshal(newEvalInput(req, facts))
	if e != nil {
		return types.Decision{}, fmt.Errorf("encode policy input: %w", e)
	}

	httpReq, e := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if e != nil {
		return types.Decision{}, fmt.Errorf("build policy request: %w", e)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, e := c.client.Do(httpReq)
	if e != nil {
		return types.Decision{}, classify(e)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return types.Decision{}, fmt.Errorf("%w: status %s", ErrUnreachable, resp.Status)
	}

	raw, e := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if e != nil {
		return types.Decision{}, classify(e)
	}

	var out evalOutput
	if e := json.Unmarshal(raw, &out); e != nil {
		return types.Decision{}, fmt.Errorf("%w: %v", ErrMalformed, e)
	}

	return out.decision()
}

// classify maps transport errors onto the client error taxonomy
func classify(e error) error {
	if errors.Is(e, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, e)
	}
	var timeout interface{ Timeout() bool }
	if errors.As(e, &timeout) && timeout.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, e)
	}
	if errors.Is(e, context.Canceled) {
		return fmt.Errorf("policy evaluation cancelled: %w", e)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, e)
}

func timeFromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns)
}
