// Package health expone el endpoint de liveness/readiness.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/trackshare/trackauth/internal/http/helpers"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/store"
)

// Controller handles GET /healthz.
type Controller struct {
	store store.Store
}

// NewController creates the health controller.
func NewController(s store.Store) *Controller {
	return &Controller{store: s}
}

type response struct {
	Status string `json:"status"`
}

// Healthz verifica la conexión al store con un timeout corto.
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		logger.From(r.Context()).Warn("health check failed",
			logger.Component("health"),
			logger.Err(err),
		)
		helpers.WriteError(w, helpers.ErrServiceUnavailable.WithDetail("store unreachable"))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ok"})
}
