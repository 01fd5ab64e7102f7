package middlewares

import (
	"net/http"

	"github.com/trackshare/trackauth/internal/http/helpers"
	"github.com/trackshare/trackauth/internal/session"
)

// WithSession valida la cookie de sesión si está presente y deja el
// payload en el contexto. No falla: los requests anónimos pasan igual.
func WithSession(mgr *session.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ck, err := r.Cookie(mgr.CookieName())
			if err != nil || ck.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			p, err := mgr.Validate(r.Context(), ck.Value)
			if err != nil {
				// Cookie vencida o inválida: limpiarla y seguir anónimo
				http.SetCookie(w, mgr.DeletionCookie())
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), p)))
		})
	}
}

// RequireSession corta los requests sin sesión válida. Las páginas
// redirigen al login; los clientes de API reciben 401.
func RequireSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetSession(r.Context()) == nil {
				if helpers.WantsJSON(r) {
					helpers.WriteError(w, helpers.ErrUnauthorized)
					return
				}
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
