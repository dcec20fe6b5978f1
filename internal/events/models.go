// Package events records the domain event trail for case administration.
// Events are emitted from the case service and product dispatchers, persisted
// through a Store, and optionally fanned out to Kafka for downstream
// consumers (accounting, notifications).
package events

import (
	"time"
)

// Type names a case domain event.
type Type string

const (
	EventCaseCreated        Type = "case_created"
	EventCaseChanged        Type = "case_changed"
	EventCommandExecuted    Type = "command_executed"
	EventCommandRejected    Type = "command_rejected"
	EventScheduleRecomputed Type = "schedule_recomputed"
)

// Event captures one key action against a case. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID                string    `json:"id"`
	Type              Type      `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	ProductIdentifier string    `json:"productIdentifier"`
	CaseIdentifier    string    `json:"caseIdentifier"`
	Action            string    `json:"action,omitempty"`
	Actor             string    `json:"actor,omitempty"`
	Outcome           string    `json:"outcome,omitempty"`
	Reason            string    `json:"reason,omitempty"`
	RequestID         string    `json:"requestId,omitempty"`
}
