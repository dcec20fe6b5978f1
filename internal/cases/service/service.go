package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"portfolio/internal/cases"
	"portfolio/internal/cases/metrics"
	"portfolio/internal/cases/store"
	"portfolio/internal/dispatch"
	"portfolio/internal/events"
	"portfolio/internal/gateway"
	"portfolio/internal/products"
	domainerrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/requestcontext"
)

//go:generate mockgen -source=../../dispatch/dispatch.go -destination=mocks/dispatcher_mocks.go -package=mocks Dispatcher

// Service orchestrates case administration: it validates inbound requests,
// consults the lifecycle table for action eligibility, and routes accepted
// commands to the owning product's dispatcher. It is the boundary the
// transport layer calls into.
type Service struct {
	store     store.Store
	catalog   products.Catalog
	registry  *dispatch.Registry
	gateway   gateway.Gateway
	publisher *events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	locks     *caseLocks
	tracer    trace.Tracer
}

func New(
	caseStore store.Store,
	catalog products.Catalog,
	registry *dispatch.Registry,
	commandGateway gateway.Gateway,
	publisher *events.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     caseStore,
		catalog:   catalog,
		registry:  registry,
		gateway:   commandGateway,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		locks:     newCaseLocks(),
		tracer:    otel.Tracer("portfolio/cases"),
	}
}

// CreateCase validates a case draft and submits a creation command. The
// returned acknowledgement means accepted-for-processing; the case becomes
// visible once the execution substrate applies the command.
func (s *Service) CreateCase(ctx context.Context, productIdentifier string, draft cases.Draft, actingIdentity string) (gateway.Ack, error) {
	if actingIdentity == "" {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest, "acting identity is required")
	}
	if err := s.requireProduct(ctx, productIdentifier); err != nil {
		return gateway.Ack{}, err
	}
	if draft.ProductIdentifier != "" && draft.ProductIdentifier != productIdentifier {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"product identifier in request body must match product identifier in request path")
	}

	if _, err := s.store.FindByIdentifier(ctx, productIdentifier, draft.Identifier); err == nil {
		return gateway.Ack{}, domainerrors.Newf(domainerrors.CodeConflict,
			"duplicate identifier: %s.%s", productIdentifier, draft.Identifier)
	} else if !domainerrors.IsCode(err, domainerrors.CodeNotFound) {
		return gateway.Ack{}, err
	}

	if draft.CurrentState != nil && *draft.CurrentState != string(cases.InitialState) {
		return gateway.Ack{}, domainerrors.Newf(domainerrors.CodeBadRequest,
			"current state must be either null or %s upon initial creation", cases.InitialState)
	}
	if draft.CreatedBy != nil && *draft.CreatedBy != actingIdentity {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"createdBy must be either null or the creating user upon initial creation")
	}
	if draft.LastModifiedBy != nil && *draft.LastModifiedBy != actingIdentity {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"lastModifiedBy must be either null or the creating user upon initial creation")
	}
	if draft.CreatedOn != nil {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"createdOn must be null upon initial creation")
	}
	if draft.LastModifiedOn != nil {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"lastModifiedOn must be null upon initial creation")
	}

	createdOn := requestcontext.Now(ctx).UTC()
	record := cases.Case{
		Identifier:        draft.Identifier,
		ProductIdentifier: productIdentifier,
		CurrentState:      cases.InitialState,
		Parameters:        draft.Parameters,
		CreatedBy:         actingIdentity,
		CreatedOn:         &createdOn,
		LastModifiedBy:    actingIdentity,
		LastModifiedOn:    &createdOn,
	}

	ack, err := s.gateway.Submit(ctx, gateway.CaseCommand{Kind: gateway.KindCreateCase, Case: record})
	if err != nil {
		return gateway.Ack{}, err
	}

	s.metrics.IncrementCreated()
	s.emit(ctx, events.Event{
		Type:              events.EventCaseCreated,
		ProductIdentifier: productIdentifier,
		CaseIdentifier:    draft.Identifier,
		Actor:             actingIdentity,
	})
	return ack, nil
}

// ChangeCase validates an update payload and submits a change command with
// the same acknowledgement semantics as creation. Identity fields are
// immutable; lifecycle state only moves through executed commands.
func (s *Service) ChangeCase(ctx context.Context, productIdentifier, caseIdentifier string, updated cases.Case, actingIdentity string) (gateway.Ack, error) {
	existing, err := s.loadCase(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		return gateway.Ack{}, err
	}

	if updated.ProductIdentifier != productIdentifier {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"product reference may not be changed")
	}
	if updated.Identifier != caseIdentifier {
		return gateway.Ack{}, domainerrors.New(domainerrors.CodeBadRequest,
			"case identifier may not be changed")
	}

	modifiedOn := requestcontext.Now(ctx).UTC()
	record := *existing
	record.Parameters = updated.Parameters
	record.LastModifiedBy = actingIdentity
	record.LastModifiedOn = &modifiedOn

	ack, err := s.gateway.Submit(ctx, gateway.CaseCommand{Kind: gateway.KindChangeCase, Case: record})
	if err != nil {
		return gateway.Ack{}, err
	}

	s.emit(ctx, events.Event{
		Type:              events.EventCaseChanged,
		ProductIdentifier: productIdentifier,
		CaseIdentifier:    caseIdentifier,
		Actor:             actingIdentity,
	})
	return ack, nil
}

// GetCase loads one case.
func (s *Service) GetCase(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error) {
	return s.loadCase(ctx, productIdentifier, caseIdentifier)
}

// ListCases returns the cases of a product sorted by identifier. Closed
// cases are filtered out unless includeClosed is set.
func (s *Service) ListCases(ctx context.Context, productIdentifier string, includeClosed bool) ([]cases.Case, error) {
	if err := s.requireProduct(ctx, productIdentifier); err != nil {
		return nil, err
	}
	records, err := s.store.FindAllForProduct(ctx, productIdentifier, includeClosed)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Identifier < records[j].Identifier
	})
	return records, nil
}

// NextActions returns the set of actions legally executable against the case
// from its current state.
func (s *Service) NextActions(ctx context.Context, productIdentifier, caseIdentifier string) (map[cases.Action]struct{}, error) {
	record, err := s.loadCase(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		return nil, err
	}
	return cases.NextActions(record.CurrentState)
}

// ExecuteCommand applies an action command to a case: it checks action
// eligibility under the per-case lock, resolves the product's dispatcher, and
// dispatches. The lock spans the whole check-then-dispatch sequence and is
// released on every exit path.
func (s *Service) ExecuteCommand(ctx context.Context, productIdentifier, caseIdentifier string, command cases.Command, actingIdentity string) error {
	ctx, span := s.tracer.Start(ctx, "cases.ExecuteCommand",
		trace.WithAttributes(
			attribute.String("case.product", productIdentifier),
			attribute.String("case.identifier", caseIdentifier),
			attribute.String("case.action", string(command.Action)),
		))
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveDispatch(time.Since(start)) }()

	if command.CreatedBy == "" {
		command.CreatedBy = actingIdentity
	}

	release := s.locks.acquire(productIdentifier + "." + caseIdentifier)
	defer release()

	record, err := s.loadCase(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		return err
	}

	actions, err := cases.NextActions(record.CurrentState)
	if err != nil {
		// A state outside the enumeration is a data-integrity bug; surface it
		// loudly rather than as a caller mistake.
		s.logger.ErrorContext(ctx, "case carries invalid lifecycle state",
			"product", productIdentifier,
			"case", caseIdentifier,
			"state", string(record.CurrentState),
		)
		return err
	}
	if _, legal := actions[command.Action]; !legal {
		err := domainerrors.Newf(domainerrors.CodeIllegalTransition,
			"action %s cannot be taken from state %s", command.Action, record.CurrentState)
		s.rejected(ctx, productIdentifier, caseIdentifier, command, err)
		return err
	}

	dispatcher, err := s.registry.Resolve(productIdentifier)
	if err != nil {
		return err
	}

	if err := dispatcher.Dispatch(ctx, productIdentifier, caseIdentifier, command); err != nil {
		s.rejected(ctx, productIdentifier, caseIdentifier, command, err)
		return err
	}

	s.metrics.IncrementExecuted(string(command.Action))
	return nil
}

func (s *Service) rejected(ctx context.Context, productIdentifier, caseIdentifier string, command cases.Command, cause error) {
	code := domainerrors.CodeOf(cause)
	s.metrics.IncrementRejected(string(code))
	s.emit(ctx, events.Event{
		Type:              events.EventCommandRejected,
		ProductIdentifier: productIdentifier,
		CaseIdentifier:    caseIdentifier,
		Action:            string(command.Action),
		Actor:             command.CreatedBy,
		Reason:            cause.Error(),
	})
}

func (s *Service) loadCase(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error) {
	if err := s.requireProduct(ctx, productIdentifier); err != nil {
		return nil, err
	}
	record, err := s.store.FindByIdentifier(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		if domainerrors.IsCode(err, domainerrors.CodeNotFound) {
			return nil, domainerrors.Newf(domainerrors.CodeNotFound,
				"case with identifier %s.%s doesn't exist", productIdentifier, caseIdentifier)
		}
		return nil, err
	}
	return record, nil
}

func (s *Service) requireProduct(ctx context.Context, productIdentifier string) error {
	exists, err := s.catalog.Exists(ctx, productIdentifier)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.Newf(domainerrors.CodeNotFound,
			"product with identifier %s doesn't exist", productIdentifier)
	}
	return nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "emit case event failed",
			"type", string(event.Type),
			"error", err,
		)
	}
}
