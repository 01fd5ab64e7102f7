// Package facebook implementa OAuth 2.0 contra la Graph API de
// Facebook. Igual que GitHub: sin ID token, el perfil sale de /me.
package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/trackshare/trackauth/internal/oauth"
)

const ProviderName = "facebook"

const (
	defaultAuthEndpoint  = "https://www.facebook.com/v19.0/dialog/oauth"
	defaultTokenEndpoint = "https://graph.facebook.com/v19.0/oauth/access_token"
	defaultUserEndpoint  = "https://graph.facebook.com/v19.0/me"
)

// DefaultScopes: el scope email implica public_profile.
var DefaultScopes = []string{"email"}

// Strategy es el cliente OAuth 2.0 de Facebook.
type Strategy struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoints sobreescribibles en tests.
	AuthEndpoint  string
	TokenEndpoint string
	UserEndpoint  string

	http *http.Client
}

var _ oauth.Strategy = (*Strategy)(nil)

// New crea la estrategia de Facebook.
func New(clientID, clientSecret, redirectURL string, scopes []string) *Strategy {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &Strategy{
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		RedirectURL:   redirectURL,
		Scopes:        scopes,
		AuthEndpoint:  defaultAuthEndpoint,
		TokenEndpoint: defaultTokenEndpoint,
		UserEndpoint:  defaultUserEndpoint,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Strategy) Name() string { return ProviderName }

// AuthURL arma la URL del dialog de consentimiento. Facebook no maneja
// nonce; viaja dentro del state firmado.
func (f *Strategy) AuthURL(_ context.Context, state, _ string) (string, error) {
	u, _ := url.Parse(f.AuthEndpoint)
	q := u.Query()
	q.Set("client_id", f.ClientID)
	q.Set("redirect_uri", f.RedirectURL)
	q.Set("scope", strings.Join(f.Scopes, ","))
	q.Set("state", state)
	q.Set("response_type", "code")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// exchangeCode canjea el code. La Graph API usa GET con query params
// para el token endpoint.
func (f *Strategy) exchangeCode(ctx context.Context, code string) (*tokenResponse, error) {
	u, _ := url.Parse(f.TokenEndpoint)
	q := u.Query()
	q.Set("client_id", f.ClientID)
	q.Set("client_secret", f.ClientSecret)
	q.Set("redirect_uri", f.RedirectURL)
	q.Set("code", code)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.Error != nil {
		return nil, fmt.Errorf("facebook oauth error: %s (%d)", tr.Error.Message, tr.Error.Code)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}
	return &tr, nil
}

type userInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Exchange canjea el code y pide /me?fields=id,name,email. El email
// puede venir vacío (cuentas registradas por teléfono o permiso
// denegado).
func (f *Strategy) Exchange(ctx context.Context, code, _ string) (*oauth.Profile, error) {
	tr, err := f.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	u, _ := url.Parse(f.UserEndpoint)
	q := u.Query()
	q.Set("fields", "id,name,email")
	q.Set("access_token", tr.AccessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("facebook api error: status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, fmt.Errorf("facebook profile without id")
	}

	return &oauth.Profile{
		ID:          info.ID,
		DisplayName: info.Name,
		Email:       info.Email,
	}, nil
}
