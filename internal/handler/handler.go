// Package handler exposes the order and product services over a thin
// JSON HTTP surface. It carries no business logic: requests are decoded,
// delegated, and domain errors mapped to user-facing messages.
package handler

import (
	"net/http"
	"strings"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/velikanov/storefront/internal/domain/order"
	"github.com/velikanov/storefront/internal/domain/product"
	"github.com/velikanov/storefront/internal/domain/user"
)

// Handler routes the storefront API endpoints.
type Handler struct {
	users          user.Repository
	products       product.Repository
	orderService   *order.Service
	productCreator *product.CreateService
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	users user.Repository,
	products product.Repository,
	orderService *order.Service,
	productCreator *product.CreateService,
) *Handler {
	return &Handler{
		users:          users,
		products:       products,
		orderService:   orderService,
		productCreator: productCreator,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("POST /api/products", h.createProduct)
	mux.HandleFunc("GET /api/products", h.listProducts)
	return mux
}

// currentUser resolves the caller from the Authorization bearer access
// token. Full session handling lives outside this service.
func (h *Handler) currentUser(r *http.Request) (*user.User, error) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		return nil, user.ErrNotFound
	}
	return h.users.FindByAccessToken(r.Context(), token)
}

// writeJSON writes the encoder's buffer with the given status code. Write
// errors are connection-level failures with nothing left to do for the
// request, so they are ignored.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeMessage writes a single-message error body: {"message": ...}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, status, &e)
}

// internalError logs err and responds 500 without leaking details.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
}
