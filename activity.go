package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess         ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure         ActivityEventType = "auth.login.failure"
	ActivityEventRoleChanged          ActivityEventType = "auth.role.changed"
	ActivityEventPasswordResetSuccess ActivityEventType = "auth.password.reset"
)

// ActivityEvent captures audit-friendly information about an action. Metadata
// carries identifiers and role names only, never credential material.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	return f(ctx, event)
}

// recordActivity emits the event and logs a failure without surfacing it;
// auditing must not fail the operation it describes.
func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if sink == nil {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil && logger != nil {
		logger.Error("failed to record activity event", "type", string(event.EventType), "error", err)
	}
}
