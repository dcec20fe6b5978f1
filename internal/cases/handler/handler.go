package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/cases"
	"portfolio/internal/events"
	"portfolio/internal/gateway"
	"portfolio/internal/individuallending"
	domainerrors "portfolio/pkg/domain-errors"
	"portfolio/pkg/platform/httputil"
	"portfolio/pkg/requestcontext"
)

// Service defines the case operations the HTTP layer delegates to.
type Service interface {
	CreateCase(ctx context.Context, productIdentifier string, draft cases.Draft, actingIdentity string) (gateway.Ack, error)
	ChangeCase(ctx context.Context, productIdentifier, caseIdentifier string, updated cases.Case, actingIdentity string) (gateway.Ack, error)
	GetCase(ctx context.Context, productIdentifier, caseIdentifier string) (*cases.Case, error)
	ListCases(ctx context.Context, productIdentifier string, includeClosed bool) ([]cases.Case, error)
	NextActions(ctx context.Context, productIdentifier, caseIdentifier string) (map[cases.Action]struct{}, error)
	ExecuteCommand(ctx context.Context, productIdentifier, caseIdentifier string, command cases.Command, actingIdentity string) error
}

// ScheduleSource exposes the current repayment schedule of a case.
type ScheduleSource interface {
	Get(productIdentifier, caseIdentifier string) []individuallending.RepaymentPeriod
}

// EventSource exposes the stored event trail of a case.
type EventSource interface {
	ListByCase(ctx context.Context, productIdentifier, caseIdentifier string) ([]events.Event, error)
}

// Handler wires case administration endpoints to the case service.
type Handler struct {
	service   Service
	schedules ScheduleSource
	events    EventSource
	logger    *slog.Logger
}

// New constructs a case handler with its dependencies.
func New(service Service, schedules ScheduleSource, eventSource EventSource, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		schedules: schedules,
		events:    eventSource,
		logger:    logger,
	}
}

// Register mounts case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/products/{productIdentifier}/cases", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Route("/{caseIdentifier}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleChange)
			r.Get("/actions", h.HandleActions)
			r.Post("/commands", h.HandleCommand)
			r.Get("/periods", h.HandlePeriods)
			r.Get("/events", h.HandleEvents)
		})
	})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productIdentifier := chi.URLParam(r, "productIdentifier")
	query := r.URL.Query()
	includeClosed := query.Get("includeClosed") == "true"

	page, err := queryInt(query, "page")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	size, err := queryInt(query, "size")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListCases(ctx, productIdentifier, includeClosed)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCases(paginate(records, page, size)))
}

func queryInt(query url.Values, name string) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, domainerrors.Newf(domainerrors.CodeBadRequest,
			"%s must be a non-negative integer", name)
	}
	return value, nil
}

// paginate slices a sorted result set. Without a size the whole set is
// returned; pages are zero-based.
func paginate(records []cases.Case, page, size int) []cases.Case {
	if size <= 0 {
		return records
	}
	start := page * size
	if start >= len(records) {
		return nil
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	productIdentifier := chi.URLParam(r, "productIdentifier")

	actingIdentity := requestcontext.User(ctx)
	if actingIdentity == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[CreateCaseRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ack, err := h.service.CreateCase(ctx, productIdentifier, req.ToDraft(), actingIdentity)
	if err != nil {
		h.logger.WarnContext(ctx, "case creation rejected",
			"request_id", requestID,
			"product", productIdentifier,
			"case", req.Identifier,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "case creation accepted",
		"request_id", requestID,
		"product", productIdentifier,
		"case", req.Identifier,
		"command_id", ack.CommandID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusAccepted, ack)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	record, err := h.service.GetCase(ctx,
		chi.URLParam(r, "productIdentifier"), chi.URLParam(r, "caseIdentifier"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCase(record))
}

func (h *Handler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	productIdentifier := chi.URLParam(r, "productIdentifier")
	caseIdentifier := chi.URLParam(r, "caseIdentifier")

	actingIdentity := requestcontext.User(ctx)
	if actingIdentity == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[ChangeCaseRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ack, err := h.service.ChangeCase(ctx, productIdentifier, caseIdentifier, req.ToCase(), actingIdentity)
	if err != nil {
		h.logger.WarnContext(ctx, "case change rejected",
			"request_id", requestID,
			"product", productIdentifier,
			"case", caseIdentifier,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, ack)
}

func (h *Handler) HandleActions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actions, err := h.service.NextActions(ctx,
		chi.URLParam(r, "productIdentifier"), chi.URLParam(r, "caseIdentifier"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromActions(actions))
}

func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()
	productIdentifier := chi.URLParam(r, "productIdentifier")
	caseIdentifier := chi.URLParam(r, "caseIdentifier")

	actingIdentity := requestcontext.User(ctx)
	if actingIdentity == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.Decode[CommandRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	command := req.ToCommand()
	if err := h.service.ExecuteCommand(ctx, productIdentifier, caseIdentifier, command, actingIdentity); err != nil {
		h.logger.WarnContext(ctx, "case command rejected",
			"request_id", requestID,
			"product", productIdentifier,
			"case", caseIdentifier,
			"action", string(command.Action),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "case command executed",
		"request_id", requestID,
		"product", productIdentifier,
		"case", caseIdentifier,
		"action", string(command.Action),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusAccepted, CommandResponse{
		CommandID: command.CommandID,
		Action:    string(command.Action),
		Outcome:   "executed",
	})
}

func (h *Handler) HandlePeriods(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productIdentifier := chi.URLParam(r, "productIdentifier")
	caseIdentifier := chi.URLParam(r, "caseIdentifier")

	// The case must exist before we answer for its schedule.
	if _, err := h.service.GetCase(ctx, productIdentifier, caseIdentifier); err != nil {
		httputil.WriteError(w, err)
		return
	}
	periods := h.schedules.Get(productIdentifier, caseIdentifier)
	httputil.WriteJSON(w, http.StatusOK, FromPeriods(periods))
}

func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productIdentifier := chi.URLParam(r, "productIdentifier")
	caseIdentifier := chi.URLParam(r, "caseIdentifier")

	if _, err := h.service.GetCase(ctx, productIdentifier, caseIdentifier); err != nil {
		httputil.WriteError(w, err)
		return
	}
	trail, err := h.events.ListByCase(ctx, productIdentifier, caseIdentifier)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if trail == nil {
		trail = []events.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, trail)
}
