package types_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	. "github.com/xbcsmith/xzepr-sub005/types"
)

func TestTypes(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "types test suit")
}

var _ = Describe("action", func() {
	DescribeTable("is in",
		func(a, b Action) {
			Expect(a.IsIn(b)).To(BeTrue())
		},
		Entry("read is in read", Read, Read),
		Entry("read is in read|create", Read, Read|Create),
		Entry("create is in all", Create, AllActions),
		Entry("manage members is in all", ManageMembers, AllActions),
	)

	DescribeTable("is not in",
		func(a, b Action) {
			Expect(a.IsIn(b)).To(BeFalse())
		},
		Entry("update is not in read|create", Update, Read|Create),
		Entry("delete is not in read|create", Delete, Read|Create),
		Entry("manage members is not in read|create", ManageMembers, Read|Create),
	)

	DescribeTable("split",
		func(joined Action, splitted []interface{}) {
			Expect(joined.Split()).To(ConsistOf(splitted...))
		},
		Entry("read only", Read, []interface{}{Read}),
		Entry("read create", Read|Create, []interface{}{Read, Create}),
		Entry("all", AllActions, []interface{}{Create, Read, Update, Delete, ManageMembers}),
	)

	DescribeTable("parse round trip",
		func(name string, want Action) {
			a, e := ParseAction(name)
			Expect(e).To(Succeed())
			Expect(a).To(Equal(want))
			Expect(a.String()).To(Equal(name))
		},
		Entry("create", "create", Create),
		Entry("read", "read", Read),
		Entry("update", "update", Update),
		Entry("delete", "delete", Delete),
		Entry("manage_members", "manage_members", ManageMembers),
	)

	It("rejects unknown actions", func() {
		_, e := ParseAction("fly")
		Expect(e).To(MatchError(ErrUnknownAction))
	})
})

var _ = Describe("role", func() {
	DescribeTable("parse",
		func(name string, want Role) {
			r, e := ParseRole(name)
			Expect(e).To(Succeed())
			Expect(r).To(Equal(want))
		},
		Entry("admin", "admin", RoleAdmin),
		Entry("owner", "owner", RoleOwner),
		Entry("member", "member", RoleMember),
		Entry("user", "user", RoleUser),
	)

	It("rejects unknown roles", func() {
		_, e := ParseRole("root")
		Expect(e).To(MatchError(ErrUnknownRole))
	})
})

var _ = Describe("resource type", func() {
	It("accepts the three tracked kinds", func() {
		for _, s := range []string{"event", "event_receiver", "event_receiver_group"} {
			_, e := ParseResourceType(s)
			Expect(e).To(Succeed())
		}
	})

	It("rejects anything else", func() {
		_, e := ParseResourceType("webhook")
		Expect(e).To(MatchError(ErrUnknownResourceType))
	})
})
