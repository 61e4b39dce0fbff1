package handler

import (
	"category-api/internal/logger"
	"category-api/internal/middleware"
	"context"
	"net/http"
	"time"
)

// CategoryCounter is the store probe used by the health check.
type CategoryCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	store CategoryCounter
	log   logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store CategoryCounter, log logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

type healthResponse struct {
	Status     string `json:"status"`
	Categories int    `json:"categories"`
}

func (h *HealthHandler) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	n, err := h.store.Count(ctx)
	if err != nil {
		h.log.Error(err, "health check failed")
		middleware.WriteError(w, http.StatusServiceUnavailable, "internal:error", "database", "Database unavailable")
		return
	}
	_ = middleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Categories: n})
}
