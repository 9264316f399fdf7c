package kitchen

import (
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/httpx"
	"github.com/appetiteclub/pos/pkg/enums/kitchenstatus"
)

type Handler struct {
	service *Service
	logger  apt.Logger
	tlm     *telemetry.HTTP
}

type ItemStatusRequest struct {
	Status string `json:"status"`
}

func NewHandler(service *Service, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		service: service,
		logger:  logger,
		tlm:     telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kitchen", func(r chi.Router) {
		r.Use(auth.Require())
		r.Get("/pending", h.PendingItems)
		r.Get("/orders/{id}/status", h.OrderStatus)
		r.Patch("/orders/{orderId}/items/{itemId}/status", h.UpdateItemStatus)

		r.With(auth.Require(auth.RoleSupervisor, auth.RoleAdmin)).
			Post("/orders/{id}/send-to-kitchen", h.SendToKitchen)
	})
}

func (h *Handler) SendToKitchen(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SendToKitchen")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	o, err := h.service.SendToKitchen(ctx, actor, id)
	if err != nil {
		httpx.Fail(w, log, "cannot send order to kitchen", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, o, "Items sent to kitchen")
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()

	log := h.log(r)

	orderID, ok := httpx.UUIDParam(w, r, log, "orderId")
	if !ok {
		return
	}
	itemID, ok := httpx.UUIDParam(w, r, log, "itemId")
	if !ok {
		return
	}

	var req ItemStatusRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}
	if req.Status == "" {
		httpx.RespondError(w, apperr.Validation(apperr.ReasonMissingField, "Status is required"))
		return
	}

	if _, err := h.service.UpdateItemStatus(r.Context(), orderID, itemID, req.Status); err != nil {
		httpx.Fail(w, log, "cannot update item status", err,
			"order_id", orderID.String(), "item_id", itemID.String(), "status", req.Status)
		return
	}

	httpx.Respond(w, http.StatusOK, nil, "Item marked "+kitchenstatus.Status(req.Status).Label())
}

func (h *Handler) PendingItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.PendingItems")
	defer finish()

	log := h.log(r)

	feed, err := h.service.PendingItems(r.Context())
	if err != nil {
		httpx.Fail(w, log, "cannot load pending items", err)
		return
	}

	httpx.RespondList(w, feed, len(feed))
}

func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OrderStatus")
	defer finish()

	log := h.log(r)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	status, err := h.service.OrderStatus(r.Context(), id)
	if err != nil {
		httpx.Fail(w, log, "cannot get kitchen status", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, status, "")
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return httpx.RequestLogger(h.logger, r)
}
