package payment

import (
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/pos/internal/apperr"
	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/httpx"
)

type PayRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type Handler struct {
	service *Service
	logger  apt.Logger
	tlm     *telemetry.HTTP
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
	r.Route("/payment/orders/{id}", func(r chi.Router) {
		r.Use(auth.Require())
		r.Get("/invoice", h.GetInvoice)
		r.With(auth.Require(auth.RoleSupervisor, auth.RoleAdmin)).Post("/pay", h.ProcessPayment)
	})
}

func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ProcessPayment")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	var req PayRequest
	if !httpx.DecodeJSON(w, r, log, &req) {
		return
	}
	if req.PaymentMethod == "" {
		httpx.RespondError(w, apperr.Validation(apperr.ReasonMissingField, "payment_method is required"))
		return
	}

	receipt, err := h.service.ProcessPayment(ctx, actor, id, req.PaymentMethod)
	if err != nil {
		httpx.Fail(w, log, "cannot process payment", err, "id", id.String(), "payment_method", req.PaymentMethod)
		return
	}

	httpx.Respond(w, http.StatusOK, receipt, "Payment processed successfully")
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetInvoice")
	defer finish()

	log := h.log(r)

	id, ok := httpx.UUIDParam(w, r, log, "id")
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoice(r.Context(), id)
	if err != nil {
		httpx.Fail(w, log, "cannot get invoice", err, "id", id.String())
		return
	}

	httpx.Respond(w, http.StatusOK, invoice, "")
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return httpx.RequestLogger(h.logger, r)
}
