package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
)

// storeCheckTimeout bounds the store check made by the health handler.
const storeCheckTimeout = 2 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
	store storage.OrderStore
}

// NewHealthHandler creates a new health handler. A nil store skips the
// store check.
func NewHealthHandler(base *Base, store storage.OrderStore) *HealthHandler {
	return &HealthHandler{Base: base, store: store}
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := dto.NewHealthResponse(h.now())
	if h.store == nil {
		h.WriteJSON(w, http.StatusOK, response)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeCheckTimeout)
	defer cancel()

	sess, err := h.store.Acquire(ctx)
	if err != nil {
		response.Status = "degraded"
		response.Store = "unavailable"
		h.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	_ = sess.Release()

	response.Store = "ok"
	h.WriteJSON(w, http.StatusOK, response)
}
