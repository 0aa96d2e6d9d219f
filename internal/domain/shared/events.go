// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"context"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the booking domain; the notifier forwards a subset of them
// to the external delivery worker.
const (
	// Session lifecycle events
	EventSessionRequested          EventType = "session.requested"
	EventSessionConfirmed          EventType = "session.confirmed"
	EventSessionDeclined           EventType = "session.declined"
	EventSessionRescheduleProposed EventType = "session.reschedule_proposed"
	EventSessionCancelled          EventType = "session.cancelled"
	EventSessionCompleted          EventType = "session.completed"
	EventSessionExpired            EventType = "session.expired"

	// Reminder events
	EventReminderDue EventType = "session.reminder_due"

	// Availability events
	EventAvailabilityUpdated EventType = "availability.updated"

	// Matching events
	EventMatchesGenerated EventType = "matching.matches_generated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
	Version     int       `json:"version"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session events
// ═══════════════════════════════════════════════════════════════════════════

// SessionEvent describes a session lifecycle change. One concrete type
// covers all transitions; the EventType carries the distinction.
type SessionEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	MentorID  string `json:"mentor_id"`
	Status    string `json:"status"`
	ActorID   string `json:"actor_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e SessionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"student_id": e.StudentID,
		"mentor_id":  e.MentorID,
		"status":     e.Status,
		"actor_id":   e.ActorID,
		"actor_role": e.ActorRole,
		"reason":     e.Reason,
	}
}

// NewSessionEvent creates a session lifecycle event.
func NewSessionEvent(eventType EventType, sessionID, studentID, mentorID, status string, actor Actor, reason string) SessionEvent {
	return SessionEvent{
		BaseEvent: NewBaseEvent(eventType, sessionID),
		SessionID: sessionID,
		StudentID: studentID,
		MentorID:  mentorID,
		Status:    status,
		ActorID:   actor.ID,
		ActorRole: string(actor.Role),
		Reason:    reason,
	}
}

// ReminderDueEvent signals that a confirmed session crossed a reminder
// horizon and a notification should be delivered.
type ReminderDueEvent struct {
	BaseEvent
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	MentorID  string    `json:"mentor_id"`
	StartsAt  time.Time `json:"starts_at"`
	Horizon   string    `json:"horizon"` // "24h" or "1h"
}

// Payload implements Event interface.
func (e ReminderDueEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session_id": e.SessionID,
		"student_id": e.StudentID,
		"mentor_id":  e.MentorID,
		"starts_at":  e.StartsAt,
		"horizon":    e.Horizon,
	}
}

// NewReminderDueEvent creates a reminder-due event.
func NewReminderDueEvent(sessionID, studentID, mentorID string, startsAt time.Time, horizon string) ReminderDueEvent {
	return ReminderDueEvent{
		BaseEvent: NewBaseEvent(EventReminderDue, sessionID),
		SessionID: sessionID,
		StudentID: studentID,
		MentorID:  mentorID,
		StartsAt:  startsAt,
		Horizon:   horizon,
	}
}

// AvailabilityUpdatedEvent signals that a mentor changed their availability.
// Used to invalidate cached matches and slots.
type AvailabilityUpdatedEvent struct {
	BaseEvent
	MentorID string `json:"mentor_id"`
}

// Payload implements Event interface.
func (e AvailabilityUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{"mentor_id": e.MentorID}
}

// NewAvailabilityUpdatedEvent creates an availability-updated event.
func NewAvailabilityUpdatedEvent(mentorID string) AvailabilityUpdatedEvent {
	return AvailabilityUpdatedEvent{
		BaseEvent: NewBaseEvent(EventAvailabilityUpdated, mentorID),
		MentorID:  mentorID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Publishing
// ═══════════════════════════════════════════════════════════════════════════

// EventPublisher publishes domain events to interested subscribers.
// Implementations must be safe for concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// EventHandler handles a published event.
type EventHandler func(ctx context.Context, event Event) error

// NoopPublisher discards all events. Useful in tests and when the event
// pipeline is disabled by configuration.
type NoopPublisher struct{}

// Publish implements EventPublisher.
func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
