package cases

import (
	domainerrors "portfolio/pkg/domain-errors"
)

// legalActions is the single source of truth for action eligibility. Every
// state in the closed enumeration has an entry; terminal states map to the
// empty set. PENDING is the delinquency-review state entered via MARK_LATE.
var legalActions = map[State][]Action{
	StateCreated:    {ActionApprove, ActionDecline},
	StatePending:    {ActionAcceptPayment, ActionWriteOff},
	StateApproved:   {ActionDisburse, ActionClose},
	StateActive:     {ActionAcceptPayment, ActionMarkLate, ActionWriteOff, ActionClose},
	StateWrittenOff: {ActionRecover},
	StateDeclined:   {},
	StateClosed:     {},
}

// NextActions returns the set of actions legally executable from state.
// This is pure domain logic - no I/O, no side effects. Callers own the
// returned set and may mutate it.
func NextActions(state State) (map[Action]struct{}, error) {
	actions, ok := legalActions[state]
	if !ok {
		return nil, domainerrors.Newf(domainerrors.CodeInvalidState,
			"state %q is outside the case lifecycle enumeration", state)
	}
	set := make(map[Action]struct{}, len(actions))
	for _, action := range actions {
		set[action] = struct{}{}
	}
	return set, nil
}

// IsTerminal reports whether no action can ever be taken from state.
func IsTerminal(state State) bool {
	return len(legalActions[state]) == 0
}
