package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "userdir/internal/adapter/http"
	"userdir/internal/adapter/http/handler"
	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
)

type healthBody struct {
	Status      string                 `json:"status"`
	Service     string                 `json:"service"`
	RateLimiter map[string]interface{} `json:"rate_limiter"`
}

func getHealth(t *testing.T, cfg *config.AppConfig) healthBody {
	t.Helper()

	health := &handler.HealthHandler{Service: cfg.ServiceName, Version: cfg.ServiceVersion}
	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())

	router := httpadapter.SetupRouterWithConfig(
		httpadapter.HandlersConfig{HealthHandler: health},
		metrics, nil, config.NewNopLogger(), cfg,
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestHealth_ReportsRateLimiterStats(t *testing.T) {
	body := getHealth(t, config.GetDefaultConfig())

	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "userdir", body.Service)
	require.NotNil(t, body.RateLimiter)
	assert.Equal(t, float64(4), body.RateLimiter["configs"])
}

func TestHealth_WithoutRateLimiter(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.RateLimitEnabled = false

	body := getHealth(t, cfg)

	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.RateLimiter)
}
