package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/auth"
	"github.com/dmehra2102/storefront/internal/order/application"
	"github.com/dmehra2102/storefront/internal/order/domain"
	"github.com/dmehra2102/storefront/pkg/httpjson"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type updateStatusReq struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the shopper's order routes to r. They expect an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/profile", h.getProfile)
}

// AdminRoutes expects to be mounted behind the admin gate.
func (h *Handler) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listAllOrders)
	r.Patch("/{id}/status", h.updateStatus)
	return r
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	id, _ := auth.FromContext(ctx)
	var req domain.Checkout
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	traceparent := r.Header.Get("traceparent")
	if traceparent == "" {
		carrier := propagation.MapCarrier{}
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		traceparent = carrier.Get("traceparent")
	}
	headers := map[string]string{"source": "storefront-service"}

	o, err := h.service.PlaceOrder(ctx, id.UserID, req, headers, traceparent)
	if err != nil {
		h.fail(w, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", o.ID))
	httpjson.Write(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	orders, err := h.service.ListOrders(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	o, err := h.service.GetOrder(r.Context(), id.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, o)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.FromContext(r.Context())
	p, err := h.service.Profile(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, p)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	orders, err := h.service.ListAllOrders(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, orders)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCheckout), errors.Is(err, application.ErrInvalidStatus):
		httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrEmptyCart):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrOrderNotFound), errors.Is(err, application.ErrProfileMissing):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("order request failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
