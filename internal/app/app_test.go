package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilberthb/Umunsi-sub002/internal/config"
	"github.com/Gilberthb/Umunsi-sub002/internal/domain"
	"github.com/Gilberthb/Umunsi-sub002/internal/mockapi"
	"github.com/Gilberthb/Umunsi-sub002/pkg/health"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
)

func loadConfig(t *testing.T, envs map[string]string) *config.Config {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func seededAPI(t *testing.T) string {
	t.Helper()
	api, err := mockapi.New(mockapi.Options{Seed: true})
	require.NoError(t, err)
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)
	return ts.URL + mockapi.APIPrefix
}

func TestApp_LoginAndHealth(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"API_URL":     seededAPI(t),
		"TOKEN_STORE": "memory",
	})
	ctx := context.Background()

	a, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	require.NoError(t, a.Start(ctx))
	assert.True(t, a.Session().State().Ready)
	assert.False(t, a.Session().IsAuthenticated())

	report := a.Health().Run(ctx)
	assert.Equal(t, health.StatusDegraded, report.Status)
	assert.Equal(t, []string{"cms-api", "session", "token-store"}, report.Names())

	require.NoError(t, a.Session().Login(ctx, domain.Credentials{
		Identifier: mockapi.SeedEditorEmail,
		Secret:     mockapi.SeedPassword,
	}))
	assert.Equal(t, domain.RoleEditor, a.Session().User().Role)

	report = a.Health().Run(ctx)
	assert.Equal(t, health.StatusUp, report.Status)
}

func TestApp_FileStoreSurvivesRestart(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"API_URL":     seededAPI(t),
		"TOKEN_STORE": "file",
		"TOKEN_FILE":  t.TempDir() + "/nested/session.json",
	})
	ctx := context.Background()

	first, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, first.Session().Login(ctx, domain.Credentials{
		Identifier: mockapi.SeedAdminEmail,
		Secret:     mockapi.SeedPassword,
	}))
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	require.NoError(t, second.Start(ctx))
	assert.True(t, second.Session().IsAuthenticated())
	assert.Equal(t, domain.RoleAdmin, second.Session().User().Role)
}

func TestApp_StartToleratesUnreachableAPI(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	cfg := loadConfig(t, map[string]string{
		"API_URL":          url + "/api",
		"TOKEN_STORE":      "sqlite",
		"TOKEN_SQLITE_DSN": ":memory:",
	})
	ctx := context.Background()

	a, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	require.NoError(t, a.store.Save(ctx, "stale-token"))
	require.NoError(t, a.Start(ctx))
	assert.False(t, a.Session().IsAuthenticated())

	tok, err := a.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stale-token", tok, "network failures keep the token")

	report := a.Health().Run(ctx)
	assert.Equal(t, health.StatusDown, report.Status)
}

func TestServer_BrowserAccessAndProfiling(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"ENVIRONMENT":           "staging",
		"MOCKAPI_JWT_SECRET":    "staging-only-secret-value",
		"MOCKAPI_SEED":          "false",
		"MOCKAPI_CORS_ORIGINS":  "https://desk.umunsi.example",
		"MOCKAPI_PPROF_ENABLED": "true",
	})

	srv, err := NewServer(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.API())
	t.Cleanup(ts.Close)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+mockapi.APIPrefix+"/articles", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		resp, err := ts.Client().Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp
	}

	resp := preflight("https://desk.umunsi.example")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://desk.umunsi.example", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = preflight("https://elsewhere.example")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = ts.Client().Get(ts.URL + "/debug/pprof/cmdline")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"MOCKAPI_SEED": "true"})

	srv, err := NewServer(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health/live")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + mockapi.APIPrefix + "/categories")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
