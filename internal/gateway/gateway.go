// Package gateway is the command-execution substrate for case creation and
// change requests. Submit acknowledges accepted-for-processing; application
// happens asynchronously, so a case is not guaranteed visible immediately
// after acknowledgement. Delivery is at-least-once; command IDs are
// deduplicated here so the stores below only ever see each command once.
package gateway

import (
	"context"
	"time"

	"portfolio/internal/cases"
)

// Kind discriminates the case command payload.
type Kind string

const (
	KindCreateCase Kind = "create_case"
	KindChangeCase Kind = "change_case"
)

// CaseCommand is a validated, audit-stamped case mutation awaiting
// application.
type CaseCommand struct {
	ID   string
	Kind Kind
	Case cases.Case
}

// Ack acknowledges a command as accepted for processing.
type Ack struct {
	CommandID  string    `json:"commandId"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// Gateway accepts case commands for eventual application.
type Gateway interface {
	Submit(ctx context.Context, command CaseCommand) (Ack, error)
}

// DedupStore records processed command IDs. FirstDelivery returns true the
// first time an ID is seen within the retention window.
type DedupStore interface {
	FirstDelivery(ctx context.Context, commandID string, retention time.Duration) (bool, error)
}

// CaseWriter is the slice of the case store the apply worker needs.
type CaseWriter interface {
	Create(ctx context.Context, record cases.Case) error
	Update(ctx context.Context, record cases.Case) error
}
