// Package github implements OAuth 2.0 authentication with GitHub.
// Unlike Google OIDC, GitHub issues no ID token: the profile comes from
// a separate API call, and the email sometimes from a second one.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trackshare/trackauth/internal/oauth"
)

const ProviderName = "github"

const (
	defaultAuthEndpoint  = "https://github.com/login/oauth/authorize"
	defaultTokenEndpoint = "https://github.com/login/oauth/access_token"
	defaultUserEndpoint  = "https://api.github.com/user"
	defaultEmailEndpoint = "https://api.github.com/user/emails"
)

// DefaultScopes: user:email alcanza para perfil + email.
var DefaultScopes = []string{"user:email"}

// Strategy es el cliente OAuth 2.0 de GitHub.
type Strategy struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Endpoints sobreescribibles en tests.
	AuthEndpoint  string
	TokenEndpoint string
	UserEndpoint  string
	EmailEndpoint string

	http *http.Client
}

var _ oauth.Strategy = (*Strategy)(nil)

// New crea la estrategia de GitHub.
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
		EmailEndpoint: defaultEmailEndpoint,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *Strategy) Name() string { return ProviderName }

// AuthURL builds the authorization URL. GitHub no soporta nonce; va
// embebido en el state firmado, así que acá se ignora.
func (g *Strategy) AuthURL(_ context.Context, state, _ string) (string, error) {
	u, _ := url.Parse(g.AuthEndpoint)
	q := u.Query()
	q.Set("client_id", g.ClientID)
	q.Set("redirect_uri", g.RedirectURL)
	q.Set("scope", strings.Join(g.Scopes, " "))
	q.Set("state", state)
	q.Set("allow_signup", "true")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

func (g *Strategy) exchangeCode(ctx context.Context, code string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", g.ClientID)
	form.Set("client_secret", g.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, "POST", g.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.Error != "" {
		return nil, fmt.Errorf("github oauth error: %s - %s", tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("no access_token in response")
	}
	return &tr, nil
}

type userInfo struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type emailInfo struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *Strategy) getJSON(ctx context.Context, endpoint, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api error: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// primaryEmail busca el mejor email disponible: primary verificado,
// después cualquiera verificado, después el primero. Puede no haber
// ninguno (emails privados sin el scope concedido).
func (g *Strategy) primaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []emailInfo
	if err := g.getJSON(ctx, g.EmailEndpoint, accessToken, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

// Exchange canjea el code y arma el perfil. Si /user no trae email,
// intenta /user/emails; si tampoco hay, el perfil queda sin email y la
// capa de arriba aplica su centinela.
func (g *Strategy) Exchange(ctx context.Context, code, _ string) (*oauth.Profile, error) {
	tr, err := g.exchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var info userInfo
	if err := g.getJSON(ctx, g.UserEndpoint, tr.AccessToken, &info); err != nil {
		return nil, err
	}

	email := info.Email
	if email == "" {
		if email, err = g.primaryEmail(ctx, tr.AccessToken); err != nil {
			return nil, err
		}
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &oauth.Profile{
		ID:          strconv.FormatInt(info.ID, 10),
		DisplayName: name,
		Email:       email,
	}, nil
}
