package individuallending

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/cases"
	casestore "portfolio/internal/cases/store"
	"portfolio/internal/events"
	"portfolio/internal/products"
	domainerrors "portfolio/pkg/domain-errors"
)

const testParams = `{"maximumBalance":"1000","termRange":3,"paymentSize":"400"}`

func testDispatcher(t *testing.T, enabled bool) (*Dispatcher, *casestore.InMemoryStore, *events.InMemoryStore, *ScheduleStore) {
	t.Helper()
	store := casestore.NewInMemoryStore()
	catalog := products.NewInMemoryCatalog()
	product := *lendingProduct()
	product.Enabled = enabled
	catalog.Register(product)

	eventStore := events.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewPublisher(eventStore, logger)
	t.Cleanup(publisher.Close)

	schedules := NewScheduleStore()
	d := NewDispatcher(store, catalog, NewPlanner(), schedules, publisher, logger)
	return d, store, eventStore, schedules
}

func seedCase(t *testing.T, store *casestore.InMemoryStore, state cases.State) {
	t.Helper()
	err := store.Create(context.Background(), cases.Case{
		ProductIdentifier: "individual-lending",
		Identifier:        "loan-1",
		CurrentState:      state,
		Parameters:        testParams,
		CreatedBy:         "fen",
	})
	require.NoError(t, err)
}

func TestDispatchApproveMovesToApproved(t *testing.T) {
	d, store, eventStore, _ := testDispatcher(t, true)
	seedCase(t, store, cases.StateCreated)

	err := d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionApprove, CreatedBy: "fen"})
	require.NoError(t, err)

	record, err := store.FindByIdentifier(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Equal(t, cases.StateApproved, record.CurrentState)
	assert.Equal(t, "fen", record.LastModifiedBy)
	require.NotNil(t, record.LastModifiedOn)

	trail, err := eventStore.ListByCase(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, events.EventCommandExecuted, trail[0].Type)
	assert.Equal(t, string(cases.ActionApprove), trail[0].Action)
}

func TestDispatchDisburseRecomputesSchedule(t *testing.T) {
	d, store, eventStore, schedules := testDispatcher(t, true)
	seedCase(t, store, cases.StateApproved)

	err := d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionDisburse, CreatedBy: "fen"})
	require.NoError(t, err)

	record, err := store.FindByIdentifier(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Equal(t, cases.StateActive, record.CurrentState)

	periods := schedules.Get("individual-lending", "loan-1")
	require.Len(t, periods, 3)
	assert.True(t, periods[0].OpeningBalance.Equal(decimal.RequireFromString("1000")))

	trail, err := eventStore.ListByCase(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	types := make([]events.Type, 0, len(trail))
	for _, event := range trail {
		types = append(types, event.Type)
	}
	assert.Contains(t, types, events.EventScheduleRecomputed)
	assert.Contains(t, types, events.EventCommandExecuted)
}

func TestDispatchScheduleReplacedWholesale(t *testing.T) {
	d, store, _, schedules := testDispatcher(t, true)
	seedCase(t, store, cases.StateApproved)

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionDisburse, CreatedBy: "fen"}))
	first := schedules.Get("individual-lending", "loan-1")

	require.NoError(t, d.Dispatch(ctx, "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionAcceptPayment, CreatedBy: "fen"}))
	second := schedules.Get("individual-lending", "loan-1")

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	assert.NotSame(t, &first[0], &second[0], "recomputation must produce a new schedule, not edit in place")
}

func TestDispatchRejectsWhenProductDisabled(t *testing.T) {
	d, store, eventStore, _ := testDispatcher(t, false)
	seedCase(t, store, cases.StateCreated)

	err := d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionApprove, CreatedBy: "fen"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeDispatchRejected, domainerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "disabled")

	record, err := store.FindByIdentifier(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Equal(t, cases.StateCreated, record.CurrentState, "rejected dispatch must not change state")

	trail, err := eventStore.ListByCase(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestDispatchRejectsUnknownAction(t *testing.T) {
	d, store, _, _ := testDispatcher(t, true)
	seedCase(t, store, cases.StateCreated)

	err := d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.Action("REFINANCE"), CreatedBy: "fen"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeDispatchRejected, domainerrors.CodeOf(err))
}

func TestDispatchRejectsTermBeyondProductMaximum(t *testing.T) {
	store := casestore.NewInMemoryStore()
	catalog := products.NewInMemoryCatalog()
	product := *lendingProduct()
	product.TermRangeMaximum = 60
	catalog.Register(product)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewPublisher(events.NewInMemoryStore(), logger)
	t.Cleanup(publisher.Close)
	schedules := NewScheduleStore()
	d := NewDispatcher(store, catalog, NewPlanner(), schedules, publisher, logger)

	err := store.Create(context.Background(), cases.Case{
		ProductIdentifier: "individual-lending",
		Identifier:        "loan-1",
		CurrentState:      cases.StateApproved,
		Parameters:        `{"maximumBalance":"1000","termRange":1000000000,"paymentSize":"400"}`,
	})
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionDisburse, CreatedBy: "fen"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeDispatchRejected, domainerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "exceeds product maximum")

	record, err := store.FindByIdentifier(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Equal(t, cases.StateApproved, record.CurrentState)
	assert.Nil(t, schedules.Get("individual-lending", "loan-1"))
}

func TestDispatchRejectsUnplannableParameters(t *testing.T) {
	d, store, _, schedules := testDispatcher(t, true)
	err := store.Create(context.Background(), cases.Case{
		ProductIdentifier: "individual-lending",
		Identifier:        "loan-1",
		CurrentState:      cases.StateApproved,
		Parameters:        `{"termRange":0}`,
	})
	require.NoError(t, err)

	err = d.Dispatch(context.Background(), "individual-lending", "loan-1",
		cases.Command{Action: cases.ActionDisburse, CreatedBy: "fen"})
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeDispatchRejected, domainerrors.CodeOf(err))

	record, err := store.FindByIdentifier(context.Background(), "individual-lending", "loan-1")
	require.NoError(t, err)
	assert.Equal(t, cases.StateApproved, record.CurrentState)
	assert.Nil(t, schedules.Get("individual-lending", "loan-1"))
}
