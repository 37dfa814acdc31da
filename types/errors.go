package types

import "errors"

// exported errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidRequest      = errors.New("invalid request, it needs a subject, a single action, and a resource")
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownRole         = errors.New("unknown role")
	ErrUnknownResourceType = errors.New("unknown resource type, it should be one of event, event_receiver, and event_receiver_group")
	ErrNoRegistry          = errors.New("resource registry is not configured")
	ErrNoPolicyClient      = errors.New("policy client is not configured")
)
