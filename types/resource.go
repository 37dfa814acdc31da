package types

// ResourceType tags the three kinds of tracked resources
type ResourceType string

const (
	TypeEvent              ResourceType = "event"
	TypeEventReceiver      ResourceType = "event_receiver"
	TypeEventReceiverGroup ResourceType = "event_receiver_group"
)

// ParseResourceType parses a serialized ResourceType
func ParseResourceType(s string) (ResourceType, error) {
	switch ResourceType(s) {
	case TypeEvent, TypeEventReceiver, TypeEventReceiverGroup:
		return ResourceType(s), nil
	}
	return "", ErrUnknownResourceType
}

// ResourceID identifies a resource within its type
type ResourceID string

func (r ResourceID) String() string {
	return "resource:" + string(r)
}

// ResourceRef names a resource in a Request.
// Ownership and membership facts are read from the registry, never trusted from the caller.
type ResourceRef struct {
	Type ResourceType
	ID   ResourceID
}

// Resource is the full persisted state of a tracked resource.
// Version increases by exactly 1 on every mutation of Owner, Group, or Members,
// and never decreases or wraps within the operational lifetime of the system.
type Resource struct {
	Type    ResourceType
	ID      ResourceID
	Owner   UserID
	Group   GroupID // empty means the resource belongs to no group
	Members map[UserID]struct{}
	Version uint64
}

// ResourceFacts is the ownership and membership snapshot a decision is evaluated against.
// All fields come from one consistent read: the Version matches the other fields.
type ResourceFacts struct {
	Owner   UserID
	Group   GroupID
	Members map[UserID]struct{}
	Version uint64
}

// IsMember tells if the user belongs to the resource's group
func (f ResourceFacts) IsMember(u UserID) bool {
	_, ok := f.Members[u]
	return ok
}
