// Package audit appends every decision to an audit trail.
// Writes are best-effort: a failing sink costs a log line, never a decision.
package audit

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/xbcsmith/xzepr-sub005/types"
)

// Recorder turns (request, decision) pairs into audit records and hands
// them to the configured sink
type Recorder struct {
	sink types.AuditSink
	log  logr.Logger
	now  func() int64
}

// NewRecorder creates a Recorder writing to sink.
// A nil sink falls back to LogSink, so decisions always leave a trace.
func NewRecorder(sink types.AuditSink, log logr.Logger, now func() int64) *Recorder {
	if sink == nil {
		sink = &LogSink{Log: log}
	}
	return &Recorder{sink: sink, log: log, now: now}
}

// Record appends one decision. Fire and forget: errors are logged locally
// and swallowed, the authorization call never fails over its audit write.
func (r *Recorder) Record(ctx context.Context, req types.Request, d types.Decision) {
	rec := types.AuditRecord{
		ID:            uuid.NewString(),
		Time:          r.now(),
		UserID:        req.Subject.UserID,
		Action:        req.Action,
		ResourceType:  req.Resource.Type,
		ResourceID:    req.Resource.ID,
		Allow:         d.Allow,
		Reason:        d.Reason,
		Source:        d.Source,
		PolicyVersion: d.PolicyVersion,
	}

	if e := r.sink.Record(ctx, rec); e != nil {
		r.log.Error(e, "append audit record",
			"user", rec.UserID, "action", rec.Action, "resource", rec.ResourceID)
	}
}

// LogSink writes audit records to the logger, for deployments without a
// dedicated trail
type LogSink struct {
	Log logr.Logger
}

func (s *LogSink) Record(_ context.Context, rec types.AuditRecord) error {
	s.Log.Info("decision",
		"id", rec.ID,
		"user", rec.UserID,
		"action", rec.Action,
		"resource_type", rec.ResourceType,
		"resource", rec.ResourceID,
		"allow", rec.Allow,
		"reason", rec.Reason,
		"source", rec.Source,
		"policy_version", rec.PolicyVersion,
	)
	return nil
}

// MemorySink keeps records in memory, for tests and local inspection
type MemorySink struct {
	mu      sync.Mutex
	records []types.AuditRecord
}

func (s *MemorySink) Record(_ context.Context, rec types.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Records returns a copy of everything recorded so far
func (s *MemorySink) Records() []types.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}
