package types

import "context"

// AuditRecord is one decision as it is appended to the audit trail
type AuditRecord struct {
	ID            string
	Time          int64 // unix nanoseconds
	UserID        UserID
	Action        Action
	ResourceType  ResourceType
	ResourceID    ResourceID
	Allow         bool
	Reason        Reason
	Source        Source
	PolicyVersion string
}

// AuditSink appends decision records to an external trail.
// Writes are best-effort from the caller's point of view: the authorizer
// logs and swallows sink errors, it never fails a decision over them.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord) error
}
