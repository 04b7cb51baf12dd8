package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/storefront/internal/auth"
	"github.com/dmehra2102/storefront/internal/cart/application"
	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	"github.com/dmehra2102/storefront/pkg/httpjson"
)

// SessionHeader carries a guest's cart session between requests.
const SessionHeader = "X-Cart-Session"

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
	}
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  *int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Patch("/items/{productID}", h.updateItem)
	r.Delete("/items/{productID}", h.removeItem)
	return r
}

// session resolves the cart key. Signed-in users own "user:<id>"; guests get a uuid session that is
// minted on first contact and echoed back in SessionHeader.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return application.UserSession(id.UserID)
	}
	guest := r.Header.Get(SessionHeader)
	if _, err := uuid.Parse(guest); err != nil {
		guest = uuid.NewString()
	}
	w.Header().Set(SessionHeader, guest)
	return application.GuestSession(guest)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	v, err := h.service.Get(ctx, h.session(w, r))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem")
	defer span.End()

	var req addItemReq
	if err := httpjson.Decode(r, &req); err != nil || req.ProductID == "" {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	span.SetAttributes(attribute.String("product.id", req.ProductID), attribute.Int("quantity", qty))

	v, err := h.service.Add(ctx, h.session(w, r), req.ProductID, qty)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCartItem")
	defer span.End()

	var req updateItemReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	v, err := h.service.Update(ctx, h.session(w, r), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartItem")
	defer span.End()

	v, err := h.service.Remove(ctx, h.session(w, r), chi.URLParam(r, "productID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), h.session(w, r)); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidQuantity):
		httpjson.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalogapp.ErrProductNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("cart request failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
