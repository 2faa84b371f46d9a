package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/cryptox"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/linkkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const frontendURL = "http://localhost:5173"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type apiEnv struct {
	router *gin.Engine
	users  *services.UserService
	clock  *clock
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Expired bool            `json:"expired"`
}

func newAPIEnv(t *testing.T, opts ...services.Option) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	tokens, err := auth.NewTokenManager([]byte("access"), []byte("refresh"), 15*time.Minute, 7*24*time.Hour, auth.WithClock(clk.Now))
	require.NoError(t, err)

	hasher := cryptox.NewHasher(cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	repos := repomanager.NewInMemoryRepositoryManager()

	opts = append([]services.Option{services.WithClock(clk.Now)}, opts...)
	us := services.NewUserService(repos, tokens, hasher, opts...)
	ls := services.NewShareLinkService(repos, frontendURL, opts...)

	r := NewRouter(Options{
		Users:       us,
		Links:       ls,
		Tokens:      tokens,
		Logger:      logging.Nop(),
		FrontendURL: frontendURL,
	})

	return &apiEnv{router: r, users: us, clock: clk}
}

type request struct {
	method  string
	path    string
	body    any
	token   string
	cookies []*http.Cookie
	header  map[string]string
}

func (e *apiEnv) do(t *testing.T, r request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	for k, v := range r.header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	}
	return rec, resp
}

type authData struct {
	AccessToken string `json:"accessToken"`
	User        struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), "data: %s", string(raw))
	return v
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.RefreshTokenCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", common.RefreshTokenCookieName)
	return nil
}

func (e *apiEnv) register(t *testing.T, username string) (authData, *http.Cookie) {
	t.Helper()
	rec, resp := e.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret-" + username,
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[authData](t, resp.Data), refreshCookie(t, rec)
}

func (e *apiEnv) loginAdmin(t *testing.T) authData {
	t.Helper()
	_, _, err := e.users.EnsureAdmin(context.Background(), "root", "root@example.com", "rootpass")
	require.NoError(t, err)

	rec, resp := e.do(t, request{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"login":    "root",
		"password": "rootpass",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[authData](t, resp.Data)
}

func TestHealth(t *testing.T) {
	e := newAPIEnv(t)

	rec, _ := e.do(t, request{method: http.MethodGet, path: "/api/health"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestUnknownRoute(t *testing.T) {
	e := newAPIEnv(t)

	rec, resp := e.do(t, request{method: http.MethodGet, path: "/api/nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, resp.Success)
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	e := newAPIEnv(t)
	e.router.GET("/boom", func(*gin.Context) { panic("boom") })

	rec, resp := e.do(t, request{method: http.MethodGet, path: "/boom"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, resp.Success)
	require.Equal(t, "Internal server error", resp.Message)
}

func TestCORS(t *testing.T) {
	e := newAPIEnv(t)

	rec, _ := e.do(t, request{method: http.MethodOptions, path: "/api/auth/login", header: map[string]string{
		"Origin":                        frontendURL,
		"Access-Control-Request-Method": "POST",
	}})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, frontendURL, rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	rec, _ = e.do(t, request{method: http.MethodOptions, path: "/api/auth/login", header: map[string]string{
		"Origin": "http://evil.example",
	}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = e.do(t, request{method: http.MethodGet, path: "/api/health", header: map[string]string{
		"Origin": frontendURL,
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, frontendURL, rec.Header().Get("Access-Control-Allow-Origin"))
}
