package types

// Request asks if a subject shall perform an action on a resource.
// Requests are immutable: build one per call.
type Request struct {
	Subject  Subject
	Action   Action
	Resource ResourceRef
}

// Validate rejects malformed requests before any I/O is done on their behalf
func (r Request) Validate() error {
	if r.Subject.UserID == "" {
		return ErrInvalidRequest
	}
	if r.Action == None || len(r.Action.Split()) != 1 {
		return ErrInvalidRequest
	}
	if _, ok := actionNames[r.Action]; !ok {
		return ErrInvalidRequest
	}
	if r.Resource.ID == "" {
		return ErrInvalidRequest
	}
	if _, e := ParseResourceType(string(r.Resource.Type)); e != nil {
		return ErrInvalidRequest
	}
	for _, role := range r.Subject.Roles {
		if _, e := ParseRole(string(role)); e != nil {
			return ErrInvalidRequest
		}
	}
	return nil
}
