package types

import "time"

// Reason is the machine-readable explanation of a Decision
type Reason string

const (
	// AdminOverride allows any action for subjects holding the admin role
	AdminOverride Reason = "admin_override"
	// OwnerMatch allows any action for the resource owner
	OwnerMatch Reason = "owner_match"
	// GroupMemberMatch allows read and create for members of the resource's group
	GroupMemberMatch Reason = "group_member_match"
	// Denied is the rejection of everything above
	Denied Reason = "denied"
)

// Source tells which path produced a Decision
type Source string

const (
	// SourcePolicy marks a decision computed by the external policy engine
	SourcePolicy Source = "policy"
	// SourceFallback marks a decision computed by the in-process evaluator
	// while the policy engine was unreachable
	SourceFallback Source = "fallback"
	// SourceCache marks a decision served from the decision cache
	SourceCache Source = "cache"
)

// Decision is the outcome of an authorization evaluation
type Decision struct {
	Allow         bool
	Reason        Reason
	EvaluatedAt   time.Time
	PolicyVersion string
	Source        Source
}
