package cases

import (
	"time"

	domainerrors "portfolio/pkg/domain-errors"
)

// State is the closed lifecycle enumeration for a case. The set is fixed at
// compile time; records carrying anything else are a data-integrity bug.
type State string

const (
	StateCreated    State = "CREATED"
	StatePending    State = "PENDING"
	StateApproved   State = "APPROVED"
	StateActive     State = "ACTIVE"
	StateDeclined   State = "DECLINED"
	StateWrittenOff State = "WRITTEN_OFF"
	StateClosed     State = "CLOSED"
)

// InitialState is the only state a case may carry at creation.
const InitialState = StateCreated

// ParseState validates a raw state string against the closed enumeration.
func ParseState(raw string) (State, error) {
	s := State(raw)
	switch s {
	case StateCreated, StatePending, StateApproved, StateActive,
		StateDeclined, StateWrittenOff, StateClosed:
		return s, nil
	}
	return "", domainerrors.Newf(domainerrors.CodeInvalidState,
		"state %q is outside the case lifecycle enumeration", raw)
}

// Action names an operation a case may undergo next.
type Action string

const (
	ActionApprove       Action = "APPROVE"
	ActionDecline       Action = "DECLINE"
	ActionDisburse      Action = "DISBURSE"
	ActionAcceptPayment Action = "ACCEPT_PAYMENT"
	ActionMarkLate      Action = "MARK_LATE"
	ActionWriteOff      Action = "WRITE_OFF"
	ActionRecover       Action = "RECOVER"
	ActionClose         Action = "CLOSE"
)

// Case is the domain record for one instantiated product agreement. Identity
// is the (ProductIdentifier, Identifier) pair and is immutable after creation.
type Case struct {
	Identifier        string     `json:"identifier"`
	ProductIdentifier string     `json:"productIdentifier"`
	CurrentState      State      `json:"currentState"`
	Parameters        string     `json:"parameters,omitempty"`
	CreatedBy         string     `json:"createdBy,omitempty"`
	CreatedOn         *time.Time `json:"createdOn,omitempty"`
	LastModifiedBy    string     `json:"lastModifiedBy,omitempty"`
	LastModifiedOn    *time.Time `json:"lastModifiedOn,omitempty"`
}

// Command is an inbound action request against one case. CommandID identifies
// the request for dedup across at-least-once redelivery.
type Command struct {
	CommandID string `json:"commandId,omitempty"`
	Action    Action `json:"action"`
	Note      string `json:"note,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
}

// Draft is a client-supplied case payload for creation. The service rejects
// drafts that pre-populate audit fields or a non-initial state.
type Draft struct {
	Identifier        string  `json:"identifier"`
	ProductIdentifier string  `json:"productIdentifier"`
	CurrentState      *string `json:"currentState,omitempty"`
	Parameters        string  `json:"parameters,omitempty"`
	CreatedBy         *string `json:"createdBy,omitempty"`
	CreatedOn         *string `json:"createdOn,omitempty"`
	LastModifiedBy    *string `json:"lastModifiedBy,omitempty"`
	LastModifiedOn    *string `json:"lastModifiedOn,omitempty"`
}
