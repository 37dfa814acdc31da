package authorizer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/xbcsmith/xzepr-sub005/internal/audit"
	"github.com/xbcsmith/xzepr-sub005/internal/authorizer"
	"github.com/xbcsmith/xzepr-sub005/internal/breaker"
	"github.com/xbcsmith/xzepr-sub005/internal/cache"
	"github.com/xbcsmith/xzepr-sub005/internal/policy"
	"github.com/xbcsmith/xzepr-sub005/internal/rbac"
	"github.com/xbcsmith/xzepr-sub005/registry/mem"
	"github.com/xbcsmith/xzepr-sub005/types"
)

func TestAuthorizer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "authorization service test suit")
}

// stubClient is a programmable policy engine stand-in
type stubClient struct {
	mu    sync.Mutex
	calls int
	fn    func(types.Request, types.ResourceFacts) (types.Decision, error)
}

func (c *stubClient) Evaluate(_ context.Context, req types.Request, facts types.ResourceFacts) (types.Decision, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.fn(req, facts)
}

func (c *stubClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// enginePolicy mirrors the external policy's rules, written against the wire
// vocabulary rather than reusing the fallback evaluator, so equivalence
// tests compare two independent expressions of the same semantics.
func enginePolicy(req types.Request, facts types.ResourceFacts) (types.Decision, error) {
	d := types.Decision{
		Allow:         false,
		Reason:        types.Denied,
		EvaluatedAt:   time.Now(),
		PolicyVersion: "2.3.1",
	}
	switch {
	case req.Subject.HasRole(types.RoleAdmin):
		d.Allow, d.Reason = true, types.AdminOverride
	case req.Subject.UserID == facts.Owner:
		d.Allow, d.Reason = true, types.OwnerMatch
	case facts.Group != "" && facts.IsMember(req.Subject.UserID) &&
		(req.Action == types.Read || req.Action == types.Create):
		d.Allow, d.Reason = true, types.GroupMemberMatch
	}
	return d, nil
}

func unreachable(types.Request, types.ResourceFacts) (types.Decision, error) {
	return types.Decision{}, policy.ErrUnreachable
}

const (
	trip     = 3
	coolDown = time.Minute
)

var _ = Describe("authorization service", func() {
	var registry *mem.Registry
	var client *stubClient
	var sink *audit.MemorySink
	var svc *authorizer.Service

	newService := func() *authorizer.Service {
		rec := audit.NewRecorder(sink, logr.Discard(), func() int64 { return time.Now().UnixNano() })
		return authorizer.New(
			registry,
			client,
			breaker.New(breaker.WithThreshold(trip), breaker.WithCoolDown(coolDown)),
			cache.New(1024, time.Minute),
			rec,
			nil,
			logr.Discard(),
		)
	}

	request := func(user types.UserID, roles []types.Role, act types.Action, res types.ResourceID) types.Request {
		return types.Request{
			Subject:  types.Subject{UserID: user, Roles: roles},
			Action:   act,
			Resource: types.ResourceRef{Type: types.TypeEventReceiver, ID: res},
		}
	}

	BeforeEach(func() {
		registry = mem.NewRegistry(types.Resource{
			Type:    types.TypeEventReceiver,
			ID:      "recv-1",
			Owner:   "u1",
			Group:   "g1",
			Members: map[types.UserID]struct{}{"m1": {}},
			Version: 1,
		})
		client = &stubClient{fn: enginePolicy}
		sink = &audit.MemorySink{}
		svc = newService()
	})

	It("returns the engine's decision and audits it as policy-sourced", func() {
		d, e := svc.Authorize(context.Background(), request("u1", nil, types.Update, "recv-1"))
		Expect(e).To(Succeed())
		Expect(d.Allow).To(BeTrue())
		Expect(d.Reason).To(Equal(types.OwnerMatch))
		Expect(d.Source).To(Equal(types.SourcePolicy))
		Expect(d.PolicyVersion).To(Equal("2.3.1"))

		records := sink.Records()
		Expect(records).To(HaveLen(1))
		Expect(records[0].Source).To(Equal(types.SourcePolicy))
		Expect(records[0].Allow).To(BeTrue())
		Expect(records[0].UserID).To(Equal(types.UserID("u1")))
	})

	It("serves the second identical call from the cache", func() {
		first, e := svc.Authorize(context.Background(), request("u1", nil, types.Update, "recv-1"))
		Expect(e).To(Succeed())

		second, e := svc.Authorize(context.Background(), request("u1", nil, types.Update, "recv-1"))
		Expect(e).To(Succeed())

		Expect(second.Source).To(Equal(types.SourceCache))
		Expect(second.Allow).To(Equal(first.Allow))
		Expect(second.Reason).To(Equal(first.Reason))
		Expect(client.callCount()).To(Equal(1))

		// one audit record per call, each tagged with its own source
		records := sink.Records()
		Expect(records).To(HaveLen(2))
		Expect(records[0].Source).To(Equal(types.SourcePolicy))
		Expect(records[1].Source).To(Equal(types.SourceCache))
	})

	It("never serves a decision computed against a superseded version", func() {
		d, e := svc.Authorize(context.Background(), request("u1", nil, types.Update, "recv-1"))
		Expect(e).To(Succeed())
		Expect(d.Allow).To(BeTrue())

		Expect(registry.SetOwner("recv-1", "u2")).To(Succeed())

		d, e = svc.Authorize(context.Background(), request("u1", nil, types.Update, "recv-1"))
		Expect(e).To(Succeed())
		Expect(d.Source).NotTo(Equal(types.SourceCache))
		Expect(d.Allow).To(BeFalse())
		Expect(d.Reason).To(Equal(types.Denied))
	})

	It("misses the cache after a membership change too", func() {
		_, e := svc.Authorize(context.Background(), request("m1", nil, types.Read, "recv-1"))
		Expect(e).To(Succeed())

		Expect(registry.AddMember("recv-1", "m2")).To(Succeed())

		d, e := svc.Authorize(context.Background(), request("m1", nil, types.Read, "recv-1"))
		Expect(e).To(Succeed())
		Expect(d.Source).To(Equal(types.SourcePolicy))
	})

	When("the policy engine is unreachable", func() {
		BeforeEach(func() {
			client.fn = unreachable
		})

		It("falls back without surfacing an error", func() {
			d, e := svc.Authorize(context.Background(), request("admin-1", []types.Role{types.RoleAdmin}, types.Delete, "recv-1"))
			Expect(e).To(Succeed())
			Expect(d.Allow).To(BeTrue())
			Expect(d.Reason).To(Equal(types.AdminOverride))
			Expect(d.Source).To(Equal(types.SourceFallback))
			Expect(d.PolicyVersion).To(Equal(rbac.PolicyVersion))
		})

		It("stops calling the engine once the breaker trips", func() {
			for i := 0; i < trip; i++ {
				req := request("u1", nil, types.Update, "recv-1")
				req.Subject.UserID = types.UserID(string(rune('a' + i))) // defeat the cache
				_, e := svc.Authorize(context.Background(), req)
				Expect(e).To(Succeed())
			}
			Expect(client.callCount()).To(Equal(trip))

			d, e := svc.Authorize(context.Background(), request("m1", nil, types.Read, "recv-1"))
			Expect(e).To(Succeed())
			Expect(d.Source).To(Equal(types.SourceFallback))
			Expect(d.Allow).To(BeTrue())
			Expect(d.Reason).To(Equal(types.GroupMemberMatch))
			Expect(client.callCount()).To(Equal(trip))
		})
	})

	It("treats a malformed response as a breaker failure and falls back", func() {
		client.fn = func(types.Request, types.ResourceFacts) (types.Decision, error) {
			return types.Decision{}, policy.ErrMalformed
		}

		for i := 0; i < trip; i++ {
			req := request(types.UserID(string(rune('a'+i))), nil, types.Read, "recv-1")
			d, e := svc.Authorize(context.Background(), req)
			Expect(e).To(Succeed())
			Expect(d.Source).To(Equal(types.SourceFallback))
		}

		// tripped: the engine is no longer consulted
		_, e := svc.Authorize(context.Background(), request("zz", nil, types.Read, "recv-1"))
		Expect(e).To(Succeed())
		Expect(client.callCount()).To(Equal(trip))
	})

	It("fails the call for an unknown resource", func() {
		_, e := svc.Authorize(context.Background(), request("u1", nil, types.Read, "missing"))
		Expect(e).To(MatchError(types.ErrNotFound))
		Expect(sink.Records()).To(BeEmpty())
	})

	It("rejects malformed requests before any I/O", func() {
		_, e := svc.Authorize(context.Background(), types.Request{})
		Expect(e).To(MatchError(types.ErrInvalidRequest))
		Expect(client.callCount()).To(BeZero())
		Expect(sink.Records()).To(BeEmpty())
	})

	It("caches fallback decisions under the same versioned key", func() {
		client.fn = unreachable

		first, e := svc.Authorize(context.Background(), request("m1", nil, types.Create, "recv-1"))
		Expect(e).To(Succeed())
		Expect(first.Source).To(Equal(types.SourceFallback))

		second, e := svc.Authorize(context.Background(), request("m1", nil, types.Create, "recv-1"))
		Expect(e).To(Succeed())
		Expect(second.Source).To(Equal(types.SourceCache))
		Expect(second.Allow).To(Equal(first.Allow))
	})

	It("matches the engine's rules decision for decision", func() {
		users := []struct {
			id    types.UserID
			roles []types.Role
		}{
			{"u1", []types.Role{types.RoleOwner}},
			{"m1", []types.Role{types.RoleMember}},
			{"stranger", []types.Role{types.RoleUser}},
			{"stranger", nil},
		}
		facts, e := registry.FactsOf(context.Background(), "recv-1")
		Expect(e).To(Succeed())

		for _, u := range users {
			for _, act := range []types.Action{types.Create, types.Read, types.Update, types.Delete, types.ManageMembers} {
				req := request(u.id, u.roles, act, "recv-1")

				fromEngine, e := enginePolicy(req, facts)
				Expect(e).To(Succeed())
				local := rbac.Evaluate(req, facts)

				Expect(local.Allow).To(Equal(fromEngine.Allow),
					"%s %s", u.id, act)
				Expect(local.Reason).To(Equal(fromEngine.Reason),
					"%s %s", u.id, act)
			}
		}
	})
})
