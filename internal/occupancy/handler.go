package occupancy

import (
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/appetiteclub/pos/internal/auth"
	"github.com/appetiteclub/pos/internal/httpx"
)

type Handler struct {
	reconciler *Reconciler
	logger     apt.Logger
	tlm        *telemetry.HTTP
}

func NewHandler(reconciler *Reconciler, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		reconciler: reconciler,
		logger:     logger,
		tlm:        telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/maintenance", func(r chi.Router) {
		r.Use(auth.Require(auth.RoleAdmin))
		r.Post("/reconcile", h.Reconcile)
	})
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Reconcile")
	defer finish()

	log := httpx.RequestLogger(h.logger, r)
	ctx := r.Context()
	actor, _ := auth.FromContext(ctx)

	report, err := h.reconciler.Reconcile(ctx, actor)
	if err != nil {
		httpx.Fail(w, log, "cannot reconcile tables", err)
		return
	}

	httpx.Respond(w, http.StatusOK, report, "Reconcile finished")
}
