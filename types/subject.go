package types

// UserID identifies a user known to the surrounding identity layer
type UserID string

func (u UserID) String() string {
	return "user:" + string(u)
}

// GroupID identifies an event receiver group a resource may belong to
type GroupID string

func (g GroupID) String() string {
	return "group:" + string(g)
}

// Role is an externally assigned capability class of a subject.
// Roles are immutable inputs to a decision: the core never grants or revokes them.
type Role string

// roles understood by the policy engine and the fallback evaluator
const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
	RoleUser   Role = "user"
)

// ParseRole parses a serialized Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleOwner, RoleMember, RoleUser:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// Subject is whoever asks to perform an Action on a Resource
type Subject struct {
	UserID   UserID
	Roles    []Role
	GroupIDs []GroupID
}

// HasRole tells if the subject carries the given role
func (s Subject) HasRole(r Role) bool {
	for _, have := range s.Roles {
		if have == r {
			return true
		}
	}
	return false
}
