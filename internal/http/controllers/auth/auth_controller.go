// Package auth expone los endpoints de registro, login y logout.
package auth

import (
	"errors"
	"net/http"

	"github.com/trackshare/trackauth/internal/http/dto/auth"
	"github.com/trackshare/trackauth/internal/http/helpers"
	svc "github.com/trackshare/trackauth/internal/http/services/auth"
	"github.com/trackshare/trackauth/internal/http/web"
	"github.com/trackshare/trackauth/internal/identity"
	"github.com/trackshare/trackauth/internal/metrics"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/session"
)

// Mensajes planos para los formularios HTML. Los clientes JSON reciben
// el error estructurado equivalente.
const (
	msgAllFieldsRequired   = "All fields required"
	msgPasswordNotMatching = "Password not matching"
	msgEmailExists         = "Email already exists"
	msgInvalidCredentials  = "Invalid email or password"
)

// Controller handles POST /register, POST /login and POST /logout.
type Controller struct {
	service  svc.Service
	sessions *session.Manager
	// providers para re-renderizar la página de login con sus botones.
	providers []string
}

// NewController creates the auth controller.
func NewController(service svc.Service, sessions *session.Manager, providers []string) *Controller {
	return &Controller{service: service, sessions: sessions, providers: providers}
}

// Register handles POST /register.
func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Register"))

	wantsJSON := helpers.WantsJSON(r)

	var req auth.RegisterRequest
	if wantsJSON {
		if !helpers.ReadJSON(w, r, &req) {
			metrics.RecordRegistration("invalid")
			return
		}
	} else {
		req.FromForm(r)
	}

	u, err := c.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrMissingFields):
			metrics.RecordRegistration("invalid")
			c.registerError(w, wantsJSON, http.StatusBadRequest, msgAllFieldsRequired)
		case errors.Is(err, identity.ErrPasswordMismatch):
			metrics.RecordRegistration("invalid")
			c.registerError(w, wantsJSON, http.StatusBadRequest, msgPasswordNotMatching)
		case errors.Is(err, identity.ErrDuplicateEmail):
			metrics.RecordRegistration("duplicate")
			c.registerError(w, wantsJSON, http.StatusConflict, msgEmailExists)
		default:
			metrics.RecordRegistration("error")
			log.Error("register failed", logger.Err(err))
			if wantsJSON {
				helpers.WriteError(w, helpers.ErrInternalServerError)
			} else {
				web.Render(w, http.StatusInternalServerError, "register.html", web.RegisterData{Error: "Something went wrong, try again"})
			}
		}
		return
	}

	metrics.RecordRegistration("ok")

	if wantsJSON {
		helpers.WriteJSON(w, http.StatusCreated, auth.RegisterResponse{UserID: u.ID, Email: u.Email})
		return
	}
	// Cuenta creada: a la página de login.
	web.Render(w, http.StatusOK, "login.html", web.LoginData{Providers: c.providers})
}

func (c *Controller) registerError(w http.ResponseWriter, wantsJSON bool, status int, msg string) {
	if wantsJSON {
		switch status {
		case http.StatusConflict:
			helpers.WriteError(w, helpers.ErrConflict.WithDetail(msg))
		default:
			helpers.WriteError(w, helpers.ErrBadRequest.WithDetail(msg))
		}
		return
	}
	web.Render(w, status, "register.html", web.RegisterData{Error: msg})
}

// Login handles POST /login.
func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("auth.Login"))

	wantsJSON := helpers.WantsJSON(r)

	var req auth.LoginRequest
	if wantsJSON {
		if !helpers.ReadJSON(w, r, &req) {
			return
		}
	} else {
		req.FromForm(r)
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			metrics.RecordLogin("local", "invalid")
			if wantsJSON {
				helpers.WriteError(w, helpers.ErrUnauthorized.WithDetail(msgInvalidCredentials))
			} else {
				web.Render(w, http.StatusUnauthorized, "login.html", web.LoginData{
					Error:     msgInvalidCredentials,
					Providers: c.providers,
				})
			}
		default:
			metrics.RecordLogin("local", "error")
			log.Error("login failed", logger.Err(err))
			if wantsJSON {
				helpers.WriteError(w, helpers.ErrInternalServerError)
			} else {
				web.Render(w, http.StatusInternalServerError, "login.html", web.LoginData{
					Error:     "Something went wrong, try again",
					Providers: c.providers,
				})
			}
		}
		return
	}

	metrics.RecordLogin("local", "ok")

	http.SetCookie(w, c.sessions.Cookie(result.Token, result.Expires))
	w.Header().Set("Cache-Control", "no-store")

	if wantsJSON {
		helpers.WriteJSON(w, http.StatusOK, auth.LoginResponse{
			UserID:      result.User.ID,
			DisplayName: result.User.Name,
			Email:       result.User.Email,
			ExpiresAt:   result.Expires.Unix(),
		})
		return
	}
	web.Render(w, http.StatusOK, "tracker.html", web.TrackerData{
		Name:  result.User.Name,
		Email: result.User.Email,
	})
}

// Logout handles POST /logout.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if ck, err := r.Cookie(c.sessions.CookieName()); err == nil && ck.Value != "" {
		_ = c.service.Logout(ctx, ck.Value)
	}
	http.SetCookie(w, c.sessions.DeletionCookie())
	w.Header().Set("Cache-Control", "no-store")

	if helpers.WantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
