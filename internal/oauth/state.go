package oauth

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateClaims viaja firmado dentro del parámetro state del flujo OAuth.
// Ata el callback al proveedor que inició el flujo y transporta el
// nonce para la verificación OIDC.
type StateClaims struct {
	Provider string
	Nonce    string
}

// StateAudience es el audience esperado en los tokens de state.
const StateAudience = "oauth-state"

// DefaultStateTTL limita la ventana entre el redirect al proveedor y
// el callback.
const DefaultStateTTL = 10 * time.Minute

// Errores de validación de state.
var (
	ErrStateInvalid = errors.New("oauth: invalid state token")
	ErrStateExpired = errors.New("oauth: state token expired")
)

// StateSigner firma y valida el state como JWT HS256 con el secret de
// sesión. Firmar el state evita tener que persistirlo del lado server.
type StateSigner struct {
	Secret []byte
	TTL    time.Duration
}

// NewStateSigner crea el firmador con el TTL por defecto.
func NewStateSigner(secret []byte) *StateSigner {
	return &StateSigner{Secret: secret, TTL: DefaultStateTTL}
}

// Sign emite el JWT de state.
func (s *StateSigner) Sign(claims StateClaims) (string, error) {
	now := time.Now().UTC()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{
		"aud":      StateAudience,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
		"provider": claims.Provider,
		"nonce":    claims.Nonce,
	})
	return tok.SignedString(s.Secret)
}

// Parse valida firma y expiración y extrae los claims.
func (s *StateSigner) Parse(tokenString string) (*StateClaims, error) {
	tok, err := jwtv5.Parse(tokenString,
		func(*jwtv5.Token) (any, error) { return s.Secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithAudience(StateAudience),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrStateExpired
		}
		return nil, ErrStateInvalid
	}
	if !tok.Valid {
		return nil, ErrStateInvalid
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrStateInvalid
	}
	claims := &StateClaims{
		Provider: strClaim(mc, "provider"),
		Nonce:    strClaim(mc, "nonce"),
	}
	if claims.Provider == "" || claims.Nonce == "" {
		return nil, ErrStateInvalid
	}
	return claims, nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}
