// Package pages sirve las páginas HTML: login, registro y tracker.
package pages

import (
	"net/http"

	"github.com/trackshare/trackauth/internal/http/middlewares"
	"github.com/trackshare/trackauth/internal/http/web"
)

// Controller renderiza las páginas embebidas.
type Controller struct {
	// providers son los proveedores sociales activos, para pintar los
	// botones de login que corresponden.
	providers []string
}

// NewController creates the pages controller.
func NewController(providers []string) *Controller {
	return &Controller{providers: providers}
}

// Home handles GET /. Usuarios con sesión van directo al tracker.
func (c *Controller) Home(w http.ResponseWriter, r *http.Request) {
	if middlewares.GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/mytracker", http.StatusFound)
		return
	}
	web.Render(w, http.StatusOK, "login.html", web.LoginData{Providers: c.providers})
}

// Register handles GET /register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	web.Render(w, http.StatusOK, "register.html", web.RegisterData{})
}

// Tracker handles GET /mytracker. Protegido por RequireSession.
func (c *Controller) Tracker(w http.ResponseWriter, r *http.Request) {
	p := middlewares.GetSession(r.Context())
	if p == nil {
		// RequireSession ya filtró; esto es un cinturón extra.
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	web.Render(w, http.StatusOK, "tracker.html", web.TrackerData{
		Name:  p.DisplayName,
		Email: p.Email,
	})
}
