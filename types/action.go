package types

import "strings"

// Action can be done on resources by subjects.
// Actions are power of twos to achieve efficient set operations, like union, intersection, complement.
// An action is also a union of actions: an access grant is expressed as one Action value.
type Action uint32

// actions on events, event receivers, and event receiver groups
const (
	Create Action = 1 << iota
	Read
	Update
	Delete
	ManageMembers

	None       Action = 0
	AllActions        = Create | Read | Update | Delete | ManageMembers
)

var actionNames = map[Action]string{
	Create:        "create",
	Read:          "read",
	Update:        "update",
	Delete:        "delete",
	ManageMembers: "manage_members",
}

// ParseAction parses a serialized single Action
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return None, ErrUnknownAction
}

// IsIn tells if all actions in a are members of b: a is subset of b
func (a Action) IsIn(b Action) bool {
	return a|b == b
}

// Includes tells if all actions in b are members of a: a is superset of b
func (a Action) Includes(b Action) bool {
	return b.IsIn(a)
}

// Difference returns set of actions belong to a but not b: complement of b in a
func (a Action) Difference(b Action) Action {
	return a &^ b
}

// Split a union of actions to slice of single actions
func (a Action) Split() []Action {
	out := make([]Action, 0)
	op := Action(1)
	for op <= a {
		if op&a > 0 {
			out = append(out, op)
		}
		op <<= 1
	}
	return out
}

func (a Action) String() string {
	as := a.Split()
	ns := make([]string, 0, len(as))
	for _, single := range as {
		n, ok := actionNames[single]
		if !ok {
			n = "unknown"
		}
		ns = append(ns, n)
	}
	return strings.Join(ns, "|")
}
