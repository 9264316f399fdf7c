package order

import (
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/httpx"
	"github.com/appetiteclub/pos/pkg/enums/orderstatus"
)

type Handler struct {
	service *Service
	loc     *time.Location
	logger  apt.Logger
	tlm     *telemetry.HTTP
}

func NewHandler(service *Service, loc *time.Location, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		service: service,
		loc:     loc,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	staff := auth.Require(auth.RoleSupervisor, auth.RoleAdmin)

	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Require())
		r.Get("/", h.ListOrders)
		r.Get("/table/{tableId}", h.ListTableOrders)
		r.Get("/{id}", h.GetOrder)

		r.Group(func(r chi.Router) {
			r.Use(staff)
			r.Post("/", h.CreateOrder)
			r.Put("/{id}", h.UpdateOrder)
			r.Delete("/{id}", h.DeleteOrder)

			r.Post("/{id}/items", h.AddItem)
			r.Put("/{id}/items/{itemId}", h.UpdateItem)
			r.Delete("/{id}/items/{itemId}", h.RemoveItem)
		})
	})

	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(auth.Require(auth.RoleAdmin))
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
	})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	var req OrderCreateRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}

	if errs := ValidateOrderCreate(req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		httpx.RespondError(w, apperr.Validation(apperr.ReasonMissingField, "Validation failed").With("errors", errs))
		return
	}

	o, err := h.service.CreateOrder(ctx, actor, req.TableID, req.Notes)
	if err != nil {
		httpx.Fail(w, log, "cannot create order", err, "table_id", req.TableID.String())
		return
	}

	httpx.Respond(w, http.StatusCreated, o, "Order created")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httpx.Fail(w, log, "cannot get order", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, o, "")
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	filter, errs := ParseListFilter(r.URL.Query().Get, h.loc)
	if len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		httpx.RespondError(w, apperr.Validation(apperr.ReasonInvalidFilter, "Invalid order filter").With("errors", errs))
		return
	}

	page, err := h.service.ListOrders(ctx, actor, filter)
	if err != nil {
		httpx.Fail(w, log, "cannot list orders", err)
		return
	}

	httpx.RespondPage(w, page.Orders, len(page.Orders), page.Total, page.Page, page.Limit)
}

func (h *Handler) ListTableOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTableOrders")
	defer finish()

	log := h.log(r)

	tableID, ok := httpx.UUIDParam(w, r, log, "tableId")
	if !ok {
		return
	}

	orders, err := h.service.OrdersByTable(r.Context(), tableID)
	if err != nil {
		httpx.Fail(w, log, "cannot list table orders", err, "table_id", tableID.String())
		return
	}

	httpx.RespondList(w, orders, len(orders))
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req OrderUpdateRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}

	var status *orderstatus.Status
	if req.Status != nil {
		parsed, ok := ParseStatus(*req.Status)
		if !ok {
			httpx.RespondError(w, apperr.Validation(apperr.ReasonInvalidStatus, "Invalid order status").With("status", *req.Status))
			return
		}
		status = &parsed
	}

	o, err := h.service.UpdateOrder(ctx, actor, id, req.Notes, status)
	if err != nil {
		httpx.Fail(w, log, "cannot update order", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, o, "Order updated")
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(ctx, actor, id); err != nil {
		httpx.Fail(w, log, "cannot delete order", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, nil, "Order deleted")
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	o, err := h.service.CancelOrder(ctx, actor, id)
	if err != nil {
		httpx.Fail(w, log, "cannot cancel order", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, o, "Order cancelled")
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req ItemAddRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}

	if errs := ValidateItemAdd(req); len(errs) > 0 {
		log.Debug("validation failed", "errors", errs)
		httpx.RespondError(w, apperr.Validation(apperr.ReasonMissingField, "Validation failed").With("errors", errs))
		return
	}

	o, err := h.service.AddItem(ctx, actor, id, req.MenuItemID, *req.Quantity, req.Note)
	if err != nil {
		httpx.Fail(w, log, "cannot add item", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusCreated, o, "Item added")
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, itemID, ok := h.itemParams(w, r, log)
	if !ok {
		return
	}

	var req ItemUpdateRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}

	o, err := h.service.UpdateItem(ctx, actor, id, itemID, req.Quantity, req.Note)
	if err != nil {
		httpx.Fail(w, log, "cannot update item", err, "id", id.String(), "item_id", itemID.String())
		return
	}

	httpx.Respond(w, http.StatusOK, o, "Item updated")
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, itemID, ok := h.itemParams(w, r, log)
	if !ok {
		return
	}

	o, err := h.service.RemoveItem(ctx, actor, id, itemID)
	if err != nil {
		httpx.Fail(w, log, "cannot remove item", err, "id", id.String(), "item_id", itemID.String())
		return
	}

	if o == nil {
		httpx.Respond(w, http.StatusOK, nil, "Item removed, empty order discarded")
		return
	}

	httpx.Respond(w, http.StatusOK, o, "Item removed")
}

func (h *Handler) itemParams(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, uuid.UUID, bool) {
	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	itemID, ok := httpx.UUIDParam(w, r, log, "itemId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, itemID, true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return httpx.RequestLogger(h.logger, r)
}
