package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "portfolio/pkg/domain-errors"
)

var allStates = []State{
	StateCreated, StatePending, StateApproved, StateActive,
	StateDeclined, StateWrittenOff, StateClosed,
}

func TestNextActionsFullTable(t *testing.T) {
	want := map[State][]Action{
		StateCreated:    {ActionApprove, ActionDecline},
		StatePending:    {ActionAcceptPayment, ActionWriteOff},
		StateApproved:   {ActionDisburse, ActionClose},
		StateActive:     {ActionAcceptPayment, ActionMarkLate, ActionWriteOff, ActionClose},
		StateWrittenOff: {ActionRecover},
		StateDeclined:   {},
		StateClosed:     {},
	}
	require.Len(t, want, len(allStates), "transition table must cover every state")

	for state, actions := range want {
		got, err := NextActions(state)
		require.NoError(t, err, string(state))
		assert.Len(t, got, len(actions), string(state))
		for _, action := range actions {
			assert.Contains(t, got, action, "%s should permit %s", state, action)
		}
	}
}

func TestNextActionsDeterministic(t *testing.T) {
	for _, state := range allStates {
		first, err := NextActions(state)
		require.NoError(t, err)
		second, err := NextActions(state)
		require.NoError(t, err)
		assert.Equal(t, first, second, string(state))
	}
}

func TestNextActionsNonEmptyExceptTerminal(t *testing.T) {
	for _, state := range allStates {
		actions, err := NextActions(state)
		require.NoError(t, err)
		if IsTerminal(state) {
			assert.Empty(t, actions, string(state))
		} else {
			assert.NotEmpty(t, actions, string(state))
		}
	}
}

func TestNextActionsUnknownState(t *testing.T) {
	_, err := NextActions(State("LIMBO"))
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInvalidState, domainerrors.CodeOf(err))
}

func TestNextActionsCallerOwnsSet(t *testing.T) {
	got, err := NextActions(StateCreated)
	require.NoError(t, err)
	delete(got, ActionApprove)

	again, err := NextActions(StateCreated)
	require.NoError(t, err)
	assert.Contains(t, again, ActionApprove)
}

func TestParseState(t *testing.T) {
	for _, state := range allStates {
		parsed, err := ParseState(string(state))
		require.NoError(t, err)
		assert.Equal(t, state, parsed)
	}

	_, err := ParseState("ARCHIVED")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInvalidState, domainerrors.CodeOf(err))
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(StateClosed))
	assert.True(t, IsTerminal(StateDeclined))
	assert.False(t, IsTerminal(StateCreated))
	assert.False(t, IsTerminal(StateActive))
	assert.False(t, IsTerminal(StateWrittenOff))
}
