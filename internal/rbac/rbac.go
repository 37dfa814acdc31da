// Package rbac is the in-process mirror of the external authorization policy.
// It exists to preserve availability when the policy engine is unreachable,
// not to diverge from it: any semantic change to the policy must land here too.
package rbac

import (
	"time"

	"github.com/xbcsmith/xzepr-sub005/types"
)

// PolicyVersion is reported on decisions computed by this evaluator,
// so audit records tell fallback rule revisions apart from engine ones.
const PolicyVersion = "local/1.0.0"

// memberActions are the only grants a group membership carries.
// ManageMembers stays owner-only for members.
var memberActions = types.Read | types.Create

// Evaluate decides a request against one consistent facts snapshot.
// Pure function: no I/O, no shared state. Rules apply in priority order,
// first match wins.
func Evaluate(req types.Request, facts types.ResourceFacts) types.Decision {
	allow, reason := evaluate(req, facts)
	return types.Decision{
		Allow:         allow,
		Reason:        reason,
		EvaluatedAt:   time.Now(),
		PolicyVersion: PolicyVersion,
	}
}

func evaluate(req types.Request, facts types.ResourceFacts) (bool, types.Reason) {
	if req.Subject.HasRole(types.RoleAdmin) {
		return true, types.AdminOverride
	}

	if req.Subject.UserID == facts.Owner {
		return true, types.OwnerMatch
	}

	if facts.Group != "" && facts.IsMember(req.Subject.UserID) && req.Action.IsIn(memberActions) {
		return true, types.GroupMemberMatch
	}

	return false, types.Denied
}
