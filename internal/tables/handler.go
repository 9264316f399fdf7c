package tables

import (
	"context"
	"net/http"
	"sort"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/httpx"
	"github.com/appetiteclub/pos/pkg/enums/tablestatus"
)

// StatusService applies explicit status edits while keeping the table
// pointer consistent with the order it refers to.
type StatusService interface {
	SetStatus(ctx context.Context, actor auth.Actor, tableID uuid.UUID, change StatusChange) (*Table, error)
}

type Handler struct {
	tableRepo TableRepo
	status    StatusService
	logger    apt.Logger
	tlm       *telemetry.HTTP
}

func NewHandler(tableRepo TableRepo, status StatusService, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		tableRepo: tableRepo,
		status:    status,
		logger:    logger,
		tlm:       telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Use(auth.Require())
		r.Get("/", h.ListTables)
		r.Get("/{id}", h.GetTable)
		r.Get("/{id}/status", h.GetTableStatus)

		r.With(auth.Require(auth.RoleSupervisor, auth.RoleAdmin)).Put("/{id}/status", h.UpdateTableStatus)
		r.With(auth.Require(auth.RoleSupervisor, auth.RoleAdmin)).Patch("/{id}/status", h.UpdateTableStatus)
	})
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	q := r.URL.Query()
	filter, validationErrors := ParseFilter(q.Get("floor"), q.Get("type"), q.Get("status"))
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		httpx.RespondError(w, apperr.Validation(apperr.ReasonInvalidFilter, "Invalid table filter").
			With("errors", validationErrors))
		return
	}

	tables, err := h.tableRepo.List(ctx, filter)
	if err != nil {
		log.Error("error retrieving tables", "error", err)
		httpx.RespondError(w, apperr.Internal(apperr.ReasonInternal, "Could not retrieve tables", err))
		return
	}

	SortByFloorAndNumber(tables)
	httpx.RespondList(w, tables, len(tables))
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	log := h.log(r)

	table, ok := h.loadTable(w, r, log)
	if !ok {
		return
	}

	httpx.Respond(w, http.StatusOK, table, "")
}

func (h *Handler) GetTableStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTableStatus")
	defer finish()

	log := h.log(r)

	table, ok := h.loadTable(w, r, log)
	if !ok {
		return
	}

	httpx.Respond(w, http.StatusOK, table.StatusView(), "")
}

func (h *Handler) UpdateTableStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTableStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req TableStatusRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}

	validationErrors := ValidateTableStatus(ctx, id, req)
	if len(validationErrors) > 0 {
		log.Debug("validation failed", "errors", validationErrors)
		httpx.RespondError(w, apperr.Validation(apperr.ReasonInvalidStatus, "Validation failed").
			With("errors", validationErrors))
		return
	}

	change := StatusChange{
		Status:  *tablestatus.ByName(req.Status),
		OrderID: req.CurrentOrderID,
	}

	table, err := h.status.SetStatus(ctx, actor, id, change)
	if err != nil {
		httpx.Fail(w, log, "cannot update table status", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, table, "Table marked "+table.Status.Label())
}

func (h *Handler) loadTable(w http.ResponseWriter, r *http.Request, log apt.Logger) (*Table, bool) {
	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return nil, false
	}

	table, err := h.tableRepo.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading table", "error", err, "id", id.String())
		httpx.RespondError(w, apperr.Internal(apperr.ReasonInternal, "Could not load table", err))
		return nil, false
	}

	if table == nil {
		httpx.RespondError(w, apperr.NotFound(apperr.ReasonTableNotFound, "Table not found").With("table_id", id.String()))
		return nil, false
	}

	return table, true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return httpx.RequestLogger(h.logger, r)
}

// SortByFloorAndNumber orders tables the way supervisor terminals list them.
func SortByFloorAndNumber(tables []*Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Floor != tables[j].Floor {
			return tables[i].Floor < tables[j].Floor
		}
		return lessNumber(tables[i].Number, tables[j].Number)
	})
}

// lessNumber compares table numbers so that "2" sorts before "10".
func lessNumber(a, b string) bool {
	if len(a) != len(b) && isDigits(a) && isDigits(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
