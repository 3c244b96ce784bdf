package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("api", down)

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
}

func TestRun_AllHealthy(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("api", up)
	h.RegisterNonCritical("token-store", up)

	resp := h.Run(context.Background())
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, []string{"api", "token-store"}, resp.Names())
}

func TestRun_NonCriticalDownDegrades(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("api", up)
	h.RegisterNonCritical("token-store", down)

	resp := h.Run(context.Background())
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["token-store"].Error)
	assert.False(t, resp.Checks["token-store"].Critical)
}

func TestRun_CriticalDownWins(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("api", down)
	h.RegisterNonCritical("token-store", down)

	assert.Equal(t, StatusDown, h.Run(context.Background()).Status)
}

func TestRun_NoCheckers(t *testing.T) {
	resp := NewHandler(0).Run(context.Background())
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestRun_TimeoutPropagates(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Run(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
	assert.Contains(t, resp.Checks["slow"].Error, "deadline")
}

func TestRegister_Overwrites(t *testing.T) {
	h := NewHandler(time.Second)
	h.Register("api", down)
	h.Register("api", up)

	assert.Equal(t, StatusUp, h.Run(context.Background()).Status)
}

func TestReadinessHandler_StatusCodes(t *testing.T) {
	h := NewHandler(time.Second)
	h.RegisterNonCritical("cache", down)

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "degraded is still ready")

	h.Register("store", down)
	rec = httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
