// Package social expone los endpoints del flujo OAuth:
// GET /auth/{provider} y GET /auth/{provider}/callback.
package social

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trackshare/trackauth/internal/http/helpers"
	svc "github.com/trackshare/trackauth/internal/http/services/social"
	"github.com/trackshare/trackauth/internal/metrics"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/session"
)

// Controller handles the social login endpoints.
type Controller struct {
	service  svc.Service
	sessions *session.Manager
}

// NewController creates the social controller.
func NewController(service svc.Service, sessions *session.Manager) *Controller {
	return &Controller{service: service, sessions: sessions}
}

// Start handles GET /auth/{provider}: redirige al consent screen.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("social.Start"), logger.Provider(provider))

	url, err := c.service.Start(ctx, provider)
	if err != nil {
		if errors.Is(err, svc.ErrUnknownProvider) {
			helpers.WriteError(w, helpers.ErrNotFound.WithDetail("unknown provider"))
			return
		}
		log.Error("start failed", logger.Err(err))
		helpers.WriteError(w, helpers.ErrInternalServerError)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback handles GET /auth/{provider}/callback: canjea el code,
// reconcilia la identidad y deja al usuario logueado en el tracker.
// Cualquier falla manda de vuelta al login; el detalle queda en logs.
func (c *Controller) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("social.Callback"), logger.Provider(provider))

	q := r.URL.Query()
	if errCode := q.Get("error"); errCode != "" {
		// El usuario canceló o el proveedor rechazó.
		log.Warn("provider returned error", logger.String("error", errCode))
		metrics.RecordLogin(provider, "denied")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	result, err := c.service.Callback(ctx, provider, q.Get("state"), q.Get("code"))
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrUnknownProvider):
			helpers.WriteError(w, helpers.ErrNotFound.WithDetail("unknown provider"))
			return
		case errors.Is(err, svc.ErrInvalidState):
			metrics.RecordLogin(provider, "invalid_state")
		case errors.Is(err, svc.ErrExchangeFailed):
			metrics.RecordLogin(provider, "exchange_failed")
		default:
			metrics.RecordLogin(provider, "error")
			log.Error("callback failed", logger.Err(err))
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	metrics.RecordLogin(provider, "ok")

	http.SetCookie(w, c.sessions.Cookie(result.Token, result.Expires))
	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, "/mytracker", http.StatusFound)
}
