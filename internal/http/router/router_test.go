package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachememory "github.com/trackshare/trackauth/internal/cache/memory"
	authctrl "github.com/trackshare/trackauth/internal/http/controllers/auth"
	healthctrl "github.com/trackshare/trackauth/internal/http/controllers/health"
	pagesctrl "github.com/trackshare/trackauth/internal/http/controllers/pages"
	socialctrl "github.com/trackshare/trackauth/internal/http/controllers/social"
	authsvc "github.com/trackshare/trackauth/internal/http/services/auth"
	socialsvc "github.com/trackshare/trackauth/internal/http/services/social"
	"github.com/trackshare/trackauth/internal/identity"
	"github.com/trackshare/trackauth/internal/oauth"
	"github.com/trackshare/trackauth/internal/session"
	storememory "github.com/trackshare/trackauth/internal/store/memory"
)

// acmeStrategy es un proveedor de mentira para ejercitar el flujo
// social sin red.
type acmeStrategy struct{}

func (acmeStrategy) Name() string { return "acme" }
func (acmeStrategy) AuthURL(_ context.Context, state, _ string) (string, error) {
	return "https://acme.example/authorize?state=" + url.QueryEscape(state), nil
}
func (acmeStrategy) Exchange(_ context.Context, code, _ string) (*oauth.Profile, error) {
	if code != "good-code" {
		return nil, context.DeadlineExceeded
	}
	return &oauth.Profile{ID: "acme-7", DisplayName: "Ana Acme", Email: "ana@acme.example"}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := storememory.New()
	sessions := session.NewManager(session.Config{
		Secret:     []byte("router-test-secret"),
		TTL:        24 * time.Hour,
		CookieName: "sid",
		Mode:       session.ModeSessioned,
	}, cachememory.New(0))

	registry := oauth.NewRegistry()
	registry.Register(acmeStrategy{})
	signer := oauth.NewStateSigner([]byte("router-test-secret"))

	authService := authsvc.NewService(authsvc.Deps{
		Credentials: identity.NewCredentials(st),
		Sessions:    sessions,
	})
	socialService := socialsvc.NewService(socialsvc.Deps{
		Registry:   registry,
		Signer:     signer,
		Reconciler: identity.NewReconciler(st),
		Sessions:   sessions,
	})

	providers := registry.Names()
	h := New(Deps{
		Pages:    pagesctrl.NewController(providers),
		Auth:     authctrl.NewController(authService, sessions, providers),
		Social:   socialctrl.NewController(socialService, sessions),
		Health:   healthctrl.NewController(st),
		Sessions: sessions,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirect evita que el client siga los 302: los tests inspeccionan
// Location y cookies del redirect mismo.
func noRedirect() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, u string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(u, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == "sid" {
			return ck
		}
	}
	return nil
}

func TestRegisterLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirect()

	// Registro incompleto.
	resp := postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body(t, resp), "All fields required")

	// Passwords distintos.
	resp = postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"},
		"password": {"pw1"}, "confirmPassword": {"pw2"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, body(t, resp), "Password not matching")

	// Registro OK: vuelve la página de login.
	resp = postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"},
		"password": {"secret123"}, "confirmPassword": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "Sign in")

	// Email repetido.
	resp = postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana 2"}, "email": {"ana@example.com"},
		"password": {"x"}, "confirmPassword": {"x"},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body(t, resp), "Email already exists")

	// Login con password incorrecto.
	resp = postForm(t, client, srv.URL+"/login", url.Values{
		"email": {"ana@example.com"}, "password": {"wrong"},
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, body(t, resp), "Invalid email or password")
	require.Nil(t, sessionCookie(resp))

	// Login OK: cookie + tracker.
	resp = postForm(t, client, srv.URL+"/login", url.Values{
		"email": {"ana@example.com"}, "password": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ck := sessionCookie(resp)
	require.NotNil(t, ck)
	require.True(t, ck.HttpOnly)
	require.Contains(t, body(t, resp), "Welcome, Ana")

	// Página protegida con la cookie.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/mytracker", nil)
	require.NoError(t, err)
	req.AddCookie(ck)
	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	// Logout: cookie de borrado y sesión muerta.
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/logout", nil)
	require.NoError(t, err)
	req.AddCookie(ck)
	resp3, err := client.Do(req)
	require.NoError(t, err)
	defer resp3.Body.Close()
	require.Equal(t, http.StatusFound, resp3.StatusCode)
	del := sessionCookie(resp3)
	require.NotNil(t, del)
	require.Equal(t, -1, del.MaxAge)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/mytracker", nil)
	require.NoError(t, err)
	req.AddCookie(ck)
	resp4, err := client.Do(req)
	require.NoError(t, err)
	defer resp4.Body.Close()
	require.Equal(t, http.StatusFound, resp4.StatusCode)
	require.Equal(t, "/", resp4.Header.Get("Location"))
}

func TestRegisterLegacyConfirmField(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirect()

	// Clientes viejos mandan confirm_password; sigue funcionando.
	resp := postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"},
		"password": {"secret123"}, "confirm_password": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), "Sign in")
}

func TestProtectedPageWithoutSession(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirect()

	resp, err := client.Get(srv.URL + "/mytracker")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestSocialFlow(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirect()

	// Proveedor desconocido: 404.
	resp, err := client.Get(srv.URL + "/auth/nope")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Start: redirect al proveedor con state firmado.
	resp, err = client.Get(srv.URL + "/auth/acme")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "acme.example", loc.Host)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	// Callback con state adulterado: de vuelta al login, sin cookie.
	resp, err = client.Get(srv.URL + "/auth/acme/callback?state=" + url.QueryEscape(state+"x") + "&code=good-code")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
	require.Nil(t, sessionCookie(resp))

	// Callback OK: cookie y redirect al tracker.
	resp, err = client.Get(srv.URL + "/auth/acme/callback?state=" + url.QueryEscape(state) + "&code=good-code")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/mytracker", resp.Header.Get("Location"))
	ck := sessionCookie(resp)
	require.NotNil(t, ck)

	// La sesión social sirve para la página protegida.
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/mytracker", nil)
	require.NoError(t, err)
	req.AddCookie(ck)
	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	require.Contains(t, body(t, resp2), "Ana Acme")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body(t, resp), `"ok"`)
}

func TestHomeRedirectsWhenLoggedIn(t *testing.T) {
	srv := newTestServer(t)
	client := noRedirect()

	resp := postForm(t, client, srv.URL+"/register", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"},
		"password": {"secret123"}, "confirmPassword": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postForm(t, client, srv.URL+"/login", url.Values{
		"email": {"ana@example.com"}, "password": {"secret123"},
	})
	ck := sessionCookie(resp)
	require.NotNil(t, ck)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(ck)
	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusFound, resp2.StatusCode)
	require.Equal(t, "/mytracker", resp2.Header.Get("Location"))
}
