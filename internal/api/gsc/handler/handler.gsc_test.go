package gschdl_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gschdl "seo_dashboard/internal/api/gsc/handler"
	gscmodels "seo_dashboard/internal/api/gsc/models"
	gscrouter "seo_dashboard/internal/api/gsc/router"
	gscsvc "seo_dashboard/internal/api/gsc/service"
	"seo_dashboard/internal/api/middleware"
	apirouter "seo_dashboard/internal/api/router"
	seomodels "seo_dashboard/internal/api/seo/models"
)

type fakeClient struct{}

func (fakeClient) QueryRows(ctx context.Context, siteURL, startDate, endDate string, dimensions []string) ([]seomodels.GSCRow, error) {
	return nil, nil
}

func (fakeClient) ListSites(ctx context.Context) ([]gscmodels.Site, error) {
	return []gscmodels.Site{{SiteURL: "https://a.com/", PermissionLevel: "siteOwner"}}, nil
}

type fakeClients struct{}

func (fakeClients) Client(ctx context.Context, sessionID string, creds *gscmodels.Credentials) (gscsvc.Client, error) {
	return fakeClient{}, nil
}

func newTestApp(t *testing.T, frontendURL string) (*fiber.App, *gscsvc.MemoryCredentialStore) {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	cfg := gscsvc.NewOAuthConfig("client-id", "secret", "http://localhost/api/v1/gsc/callback")
	cfg.Endpoint = oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	store := gscsvc.NewMemoryCredentialStore(0)
	sessions := gscsvc.NewSessionService(cfg, store)

	h := gschdl.NewGSCHandler(sessions, fakeClients{}, gschdl.CookieOptions{FrontendURL: frontendURL})
	app := fiber.New()
	require.NoError(t, apirouter.SetupRoutes(app, gscrouter.Register(h)))
	return app, store
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body envelope
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return body
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestGSCHandler_ConnectFlow(t *testing.T) {
	app, store := newTestApp(t, "")

	// auth-url cấp phiên mới qua cookie, state = session ID
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/gsc/auth-url", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sessionID := sessionCookie(resp)
	require.True(t, gscsvc.ValidSessionID(sessionID))

	var authURL struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &authURL))
	u, err := url.Parse(authURL.URL)
	require.NoError(t, err)
	assert.Equal(t, sessionID, u.Query().Get("state"))

	// sites chưa kết nối => 401
	req := httptest.NewRequest(http.MethodGet, "/api/v1/gsc/sites", nil)
	req.Header.Set(middleware.SessionHeaderName, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// callback mang cookie phiên do auth-url đặt
	req = httptest.NewRequest(http.MethodGet, "/api/v1/gsc/callback?code=good-code&state="+sessionID, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionID})
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status gscmodels.ConnectionStatus
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &status))
	assert.True(t, status.Connected)
	assert.True(t, status.Configured)

	creds, err := store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "refresh-1", creds.RefreshToken)

	// sites sau khi kết nối
	req = httptest.NewRequest(http.MethodGet, "/api/v1/gsc/sites", nil)
	req.Header.Set(middleware.SessionHeaderName, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sites []gscmodels.Site
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &sites))
	require.Len(t, sites, 1)

	// disconnect
	req = httptest.NewRequest(http.MethodPost, "/api/v1/gsc/disconnect", nil)
	req.Header.Set(middleware.SessionHeaderName, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/gsc/status", nil)
	req.Header.Set(middleware.SessionHeaderName, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &status))
	assert.False(t, status.Connected)
}

func TestGSCHandler_CallbackRejects(t *testing.T) {
	app, _ := newTestApp(t, "")
	sessionID := gscsvc.NewSessionID()

	cases := map[string]struct {
		target string
		cookie string
		want   int
	}{
		"google error":   {"/api/v1/gsc/callback?error=access_denied&state=" + sessionID, "", http.StatusUnauthorized},
		"bad state":      {"/api/v1/gsc/callback?code=good-code&state=../x", "../x", http.StatusBadRequest},
		"state mismatch": {"/api/v1/gsc/callback?code=good-code&state=" + sessionID, gscsvc.NewSessionID(), http.StatusBadRequest},
		"missing cookie": {"/api/v1/gsc/callback?code=good-code&state=" + sessionID, "", http.StatusBadRequest},
		"bad code":       {"/api/v1/gsc/callback?code=wrong&state=" + sessionID, sessionID, http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: tc.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestGSCHandler_CallbackRedirectsToFrontend(t *testing.T) {
	app, _ := newTestApp(t, "http://localhost:3000/settings")
	sessionID := gscsvc.NewSessionID()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gsc/callback?code=good-code&state="+sessionID, nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: sessionID})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000/settings?gsc=connected", resp.Header.Get("Location"))
	assert.Equal(t, sessionID, sessionCookie(resp))
}

func TestGSCHandler_CallbackIgnoresSessionHeader(t *testing.T) {
	app, store := newTestApp(t, "")
	sessionID := gscsvc.NewSessionID()

	// Header phiên không thay được cookie: chặn gắn token vào phiên do người khác chọn
	req := httptest.NewRequest(http.MethodGet, "/api/v1/gsc/callback?code=good-code&state="+sessionID, nil)
	req.Header.Set(middleware.SessionHeaderName, sessionID)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	creds, err := store.Load(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Nil(t, creds)
}
