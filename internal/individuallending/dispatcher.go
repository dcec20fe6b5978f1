package individuallending

import (
	"context"
	"log/slog"
	"time"

	"portfolio/internal/cases"
	"portfolio/internal/dispatch"
	"portfolio/internal/events"
	"portfolio/internal/products"
	"portfolio/pkg/requestcontext"
)

// workflow maps each accepted action to the state it moves the case into.
// Target states are product workflow, owned here; the generic lifecycle table
// in the cases package only answers legality.
var workflow = map[cases.Action]cases.State{
	cases.ActionApprove:       cases.StateApproved,
	cases.ActionDecline:       cases.StateDeclined,
	cases.ActionDisburse:      cases.StateActive,
	cases.ActionAcceptPayment: cases.StateActive,
	cases.ActionMarkLate:      cases.StatePending,
	cases.ActionWriteOff:      cases.StateWrittenOff,
	cases.ActionRecover:       cases.StateActive,
	cases.ActionClose:         cases.StateClosed,
}

// recomputeOn lists the actions whose effects change the repayment schedule.
var recomputeOn = map[cases.Action]bool{
	cases.ActionDisburse:      true,
	cases.ActionAcceptPayment: true,
	cases.ActionWriteOff:      true,
	cases.ActionRecover:       true,
}

// CaseStore is the state-setting collaborator the dispatcher mutates cases
// through.
type CaseStore interface {
	FindByIdentifier(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error)
	UpdateState(ctx context.Context, productIdentifier, caseIdentifier string,
		state cases.State, modifiedBy string, modifiedOn time.Time) error
}

// Catalog supplies the product's charge definitions for schedule planning.
type Catalog interface {
	FindByIdentifier(ctx context.Context, productIdentifier string) (*products.Product, error)
}

// Dispatcher is the individual-lending implementation of the product command
// dispatcher. It is invoked only for actions the lifecycle table already
// allowed; anything it rejects on top of that is a product-specific
// precondition surfaced as a rejected-command error.
type Dispatcher struct {
	store     CaseStore
	catalog   Catalog
	planner   *Planner
	schedules *ScheduleStore
	publisher *events.Publisher
	logger    *slog.Logger
}

func NewDispatcher(
	store CaseStore,
	catalog Catalog,
	planner *Planner,
	schedules *ScheduleStore,
	publisher *events.Publisher,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:     store,
		catalog:   catalog,
		planner:   planner,
		schedules: schedules,
		publisher: publisher,
		logger:    logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, productIdentifier, caseIdentifier string, command cases.Command) error {
	record, err := d.store.FindByIdentifier(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		return err
	}
	product, err := d.catalog.FindByIdentifier(ctx, productIdentifier)
	if err != nil {
		return err
	}

	target, known := workflow[command.Action]
	if !known {
		return dispatch.Rejected("action " + string(command.Action) + " is not part of the individual lending workflow")
	}
	if !product.Enabled && (command.Action == cases.ActionApprove || command.Action == cases.ActionDisburse) {
		return dispatch.Rejected("product " + productIdentifier + " is disabled")
	}

	// Plan before touching state so a malformed case cannot end up half
	// transitioned with no schedule.
	var periods []RepaymentPeriod
	if recomputeOn[command.Action] {
		params, err := ParseCaseParameters(record.Parameters)
		if err != nil {
			return dispatch.Rejected("case parameters do not permit schedule planning: " + err.Error())
		}
		periods, err = d.planner.Plan(product, params)
		if err != nil {
			return dispatch.Rejected("schedule planning failed: " + err.Error())
		}
	}

	appliedAt := requestcontext.Now(ctx).UTC()
	if err := d.store.UpdateState(ctx, productIdentifier, caseIdentifier, target, command.CreatedBy, appliedAt); err != nil {
		return err
	}

	if periods != nil {
		d.schedules.Replace(productIdentifier, caseIdentifier, periods)
		d.emit(ctx, events.Event{
			Type:              events.EventScheduleRecomputed,
			ProductIdentifier: productIdentifier,
			CaseIdentifier:    caseIdentifier,
			Action:            string(command.Action),
			Actor:             command.CreatedBy,
		})
	}

	d.emit(ctx, events.Event{
		Type:              events.EventCommandExecuted,
		ProductIdentifier: productIdentifier,
		CaseIdentifier:    caseIdentifier,
		Action:            string(command.Action),
		Actor:             command.CreatedBy,
		Outcome:           string(target),
	})

	d.logger.InfoContext(ctx, "command dispatched",
		"product", productIdentifier,
		"case", caseIdentifier,
		"action", string(command.Action),
		"state", string(target),
	)
	return nil
}

func (d *Dispatcher) emit(ctx context.Context, event events.Event) {
	if d.publisher == nil {
		return
	}
	if err := d.publisher.Emit(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "emit case event failed",
			"type", string(event.Type),
			"error", err,
		)
	}
}
