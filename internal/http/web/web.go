// Package web sirve las páginas HTML embebidas en el binario.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/trackshare/trackauth/internal/observability/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// LoginData alimenta login.html.
type LoginData struct {
	Error     string
	Providers []string
}

// RegisterData alimenta register.html.
type RegisterData struct {
	Error string
}

// TrackerData alimenta tracker.html.
type TrackerData struct {
	Name  string
	Email string
}

// Render escribe la página indicada con sus datos.
func Render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, page, data); err != nil {
		logger.L().Error("template render failed",
			logger.Component("web"),
			logger.String("page", page),
			logger.Err(err),
		)
	}
}
