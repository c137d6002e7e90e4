package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/auth"
	"github.com/meatlab/lims-api/internal/config"
	"github.com/meatlab/lims-api/internal/domain"
	"github.com/meatlab/lims-api/internal/http/middleware"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func hit(h http.Handler, path, ip string, user *auth.UserContext) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	if user != nil {
		req = req.WithContext(auth.WithUserContext(req.Context(), user))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr.Code
}

func TestRateLimiter_LimitByIP(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     2,
		RequestsPerMinuteAuth: 100,
	}, zap.NewNop())
	h := rl.LimitByIP(okHandler())

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.1", nil))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.1", nil))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/samples", "10.0.0.1", nil))

	// other callers keep their own budget
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.2", nil))
}

func TestRateLimiter_LimitPerUser(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:               true,
		RequestsPerMinute:     100,
		RequestsPerMinuteAuth: 1,
	}, zap.NewNop())
	h := rl.Limit(okHandler())

	alice := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleAnalyst}
	bob := &auth.UserContext{UserID: uuid.New(), Role: domain.RoleAnalyst}

	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.1", alice))
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "/api/v1/samples", "10.0.0.1", alice))
	assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.1", bob))
}

func TestRateLimiter_Whitelist(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"127.0.0.1"},
		WhitelistPaths:    []string{"/health", "/api/v1/telegram/*"},
	}, zap.NewNop())
	h := rl.LimitByIP(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/health", "10.0.0.9", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/telegram/webhook", "10.0.0.9", nil))
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "127.0.0.1", nil))
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := middleware.NewRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 1}, zap.NewNop())
	h := rl.LimitByIP(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "/api/v1/samples", "10.0.0.1", nil))
	}
}
