package middlewares

import (
	"context"

	"github.com/trackshare/trackauth/internal/session"
)

type ctxKey string

const (
	// ctxSessionKey guarda el payload de la sesión validada
	ctxSessionKey ctxKey = "session"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// withSession inyecta el payload de sesión en el contexto (interno)
func withSession(ctx context.Context, p *session.Payload) context.Context {
	return context.WithValue(ctx, ctxSessionKey, p)
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetSession obtiene el payload de la sesión del contexto.
// Retorna nil si el request no trae sesión válida.
func GetSession(ctx context.Context) *session.Payload {
	if v := ctx.Value(ctxSessionKey); v != nil {
		if p, ok := v.(*session.Payload); ok {
			return p
		}
	}
	return nil
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
