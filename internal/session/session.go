// Package session emite, valida y destruye sesiones de usuario.
//
// Soporta dos modos. En "sessioned" (el default) el cliente recibe un
// token opaco y el estado vive del lado server, indexado en cache por
// el hash del token; destruir la sesión es borrar esa entrada. En
// "stateless" la sesión es un JWT HS256 autocontenido: no hay estado
// server-side y el logout solo borra la cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/trackshare/trackauth/internal/cache"
	"github.com/trackshare/trackauth/internal/domain/types"
	tokens "github.com/trackshare/trackauth/internal/security/token"
)

// Modos de sesión.
const (
	ModeSessioned = "sessioned"
	ModeStateless = "stateless"
)

const keyPrefix = "sid:"

// ErrInvalidSession cubre token ausente, desconocido, vencido o mal
// firmado. No se distingue hacia afuera.
var ErrInvalidSession = errors.New("session: invalid or expired session")

// Payload es lo que una sesión válida dice del usuario.
type Payload struct {
	UserID      string    `json:"uid"`
	DisplayName string    `json:"name"`
	Email       string    `json:"email"`
	Expires     time.Time `json:"exp"`
}

// Config gobierna emisión y cookies.
type Config struct {
	Secret     []byte
	TTL        time.Duration
	CookieName string
	Domain     string
	SameSite   string
	Secure     bool
	Mode       string
}

// Manager emite y valida sesiones según el modo configurado.
type Manager struct {
	cfg   Config
	cache cache.Cache

	now func() time.Time
}

// NewManager crea el manager. cache puede ser nil en modo stateless.
func NewManager(cfg Config, c cache.Cache) *Manager {
	if cfg.Mode == "" {
		cfg.Mode = ModeSessioned
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "sid"
	}
	return &Manager{cfg: cfg, cache: c, now: time.Now}
}

// Issue emite una sesión para el usuario y retorna el token que viaja
// en la cookie junto con su expiración.
func (m *Manager) Issue(ctx context.Context, u *types.User) (string, time.Time, error) {
	expires := m.now().UTC().Add(m.cfg.TTL)
	p := Payload{
		UserID:      u.ID,
		DisplayName: u.Name,
		Email:       u.Email,
		Expires:     expires,
	}

	if m.cfg.Mode == ModeStateless {
		tok, err := m.signJWT(p)
		return tok, expires, err
	}

	raw, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := m.cache.Set(keyPrefix+tokens.SHA256Base64URL(raw), body, m.cfg.TTL); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	return raw, expires, nil
}

// Validate resuelve el token a su payload o retorna ErrInvalidSession.
func (m *Manager) Validate(ctx context.Context, token string) (*Payload, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidSession
	}
	if m.cfg.Mode == ModeStateless {
		return m.parseJWT(token)
	}

	body, ok := m.cache.Get(keyPrefix + tokens.SHA256Base64URL(token))
	if !ok {
		return nil, ErrInvalidSession
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, ErrInvalidSession
	}
	// El backend de cache ya expira por TTL; el chequeo extra cubre
	// backends sin expiración nativa.
	if !p.Expires.After(m.now().UTC()) {
		_ = m.cache.Delete(keyPrefix + tokens.SHA256Base64URL(token))
		return nil, ErrInvalidSession
	}
	return &p, nil
}

// Destroy invalida la sesión server-side. En modo stateless no hay
// nada que borrar y solo importa la cookie de borrado.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if m.cfg.Mode == ModeStateless || strings.TrimSpace(token) == "" {
		return nil
	}
	return m.cache.Delete(keyPrefix + tokens.SHA256Base64URL(token))
}

// CookieName expone el nombre configurado para que los handlers lean
// la cookie correcta.
func (m *Manager) CookieName() string { return m.cfg.CookieName }

// Cookie arma la cookie de sesión.
func (m *Manager) Cookie(token string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: parseSameSite(m.cfg.SameSite),
		Expires:  expires.UTC(),
		MaxAge:   int(time.Until(expires).Seconds()),
	}
	if strings.TrimSpace(m.cfg.Domain) != "" {
		ck.Domain = m.cfg.Domain
	}
	return ck
}

// DeletionCookie arma la cookie que borra la sesión en el browser.
func (m *Manager) DeletionCookie() *http.Cookie {
	ck := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: parseSameSite(m.cfg.SameSite),
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
	}
	if strings.TrimSpace(m.cfg.Domain) != "" {
		ck.Domain = m.cfg.Domain
	}
	return ck
}

func (m *Manager) signJWT(p Payload) (string, error) {
	now := m.now().UTC()
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"sub":   p.UserID,
		"name":  p.DisplayName,
		"email": p.Email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   p.Expires.Unix(),
	})
	return tok.SignedString(m.cfg.Secret)
}

func (m *Manager) parseJWT(token string) (*Payload, error) {
	tok, err := jwtv5.Parse(token,
		func(*jwtv5.Token) (any, error) { return m.cfg.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidSession
	}
	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidSession
	}
	name, _ := mc["name"].(string)
	email, _ := mc["email"].(string)
	var expires time.Time
	if expf, ok := mc["exp"].(float64); ok {
		expires = time.Unix(int64(expf), 0).UTC()
	}
	return &Payload{UserID: sub, DisplayName: name, Email: email, Expires: expires}, nil
}

func parseSameSite(s string) http.SameSite {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
