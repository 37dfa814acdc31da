package types_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	. "github.com/xbcsmith/xzepr-sub005/types"
)

func validRequest() Request {
	return Request{
		Subject: Subject{
			UserID:   "alice",
			Roles:    []Role{RoleUser},
			GroupIDs: []GroupID{"ops"},
		},
		Action: Read,
		Resource: ResourceRef{
			Type: TypeEventReceiver,
			ID:   "recv-1",
		},
	}
}

var _ = Describe("request validation", func() {
	It("accepts a complete request", func() {
		Expect(validRequest().Validate()).To(Succeed())
	})

	DescribeTable("rejects before any I/O",
		func(mutate func(*Request)) {
			req := validRequest()
			mutate(&req)
			Expect(req.Validate()).To(MatchError(ErrInvalidRequest))
		},
		Entry("missing user", func(r *Request) { r.Subject.UserID = "" }),
		Entry("missing action", func(r *Request) { r.Action = None }),
		Entry("joined actions", func(r *Request) { r.Action = Read | Create }),
		Entry("missing resource id", func(r *Request) { r.Resource.ID = "" }),
		Entry("unknown resource type", func(r *Request) { r.Resource.Type = "webhook" }),
		Entry("unknown role", func(r *Request) { r.Subject.Roles = []Role{"root"} }),
	)
})

var _ = Describe("subject", func() {
	It("knows its roles", func() {
		sub := Subject{UserID: "alice", Roles: []Role{RoleAdmin, RoleUser}}
		Expect(sub.HasRole(RoleAdmin)).To(BeTrue())
		Expect(sub.HasRole(RoleMember)).To(BeFalse())
	})
})
