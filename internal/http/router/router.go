// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/trackshare/trackauth/internal/http/controllers/auth"
	healthctrl "github.com/trackshare/trackauth/internal/http/controllers/health"
	pagesctrl "github.com/trackshare/trackauth/internal/http/controllers/pages"
	socialctrl "github.com/trackshare/trackauth/internal/http/controllers/social"
	mw "github.com/trackshare/trackauth/internal/http/middlewares"
	"github.com/trackshare/trackauth/internal/metrics"
	"github.com/trackshare/trackauth/internal/session"
)

// Deps contains everything the router mounts.
type Deps struct {
	Pages  *pagesctrl.Controller
	Auth   *authctrl.Controller
	Social *socialctrl.Controller
	Health *healthctrl.Controller

	Sessions *session.Manager

	// MetricsHandler sirve GET /metrics. Nil lo deshabilita.
	MetricsHandler http.Handler
}

// New construye el handler raíz con la cadena de middlewares global.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Páginas
	r.Get("/", deps.Pages.Home)
	r.Get("/register", deps.Pages.Register)
	r.With(mw.RequireSession()).Get("/mytracker", deps.Pages.Tracker)

	// Autenticación local
	r.Post("/register", deps.Auth.Register)
	r.Post("/login", deps.Auth.Login)
	r.Post("/logout", deps.Auth.Logout)

	// Login social
	r.Get("/auth/{provider}", deps.Social.Start)
	r.Get("/auth/{provider}/callback", deps.Social.Callback)

	// Operacional
	r.Get("/healthz", deps.Health.Healthz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Cadena global por fuera del mux, así cubre también los 404 de chi.
	// Orden: recover primero (envuelve todo), después request id y
	// headers, sesión antes del logging para que user_id salga en los
	// logs, métricas al final de la cadena.
	return mw.Chain(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.WithSession(deps.Sessions),
		metrics.WithMetrics,
		mw.WithLogging(),
	)
}
