package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-empire/internal/config"
	"stock-empire/internal/container"
	"stock-empire/internal/domain"
	"stock-empire/pkg/errors"
	"stock-empire/pkg/logger"
)

func newTestContainer(environment string) *container.Container {
	return &container.Container{
		Config: &config.Config{Environment: environment},
		Logger: logger.NewNop(),
	}
}

func TestAuthHandler_GetMe(t *testing.T) {
	h := NewAuthHandler(newTestContainer("test"))

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/me", nil), &domain.AuthClaims{
		Sub:   "user_123",
		Email: "kim@example.com",
		Tier:  domain.TierVVIP,
	})
	rec := httptest.NewRecorder()

	h.GetMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body MeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "user_123", body.User.Sub)
	assert.Equal(t, domain.TierVVIP, body.Tier)
	assert.Contains(t, body.Capabilities, domain.CapMacroDashboard)
}

func TestAuthHandler_GetMeWithoutClaims(t *testing.T) {
	h := NewAuthHandler(newTestContainer("test"))
	rec := httptest.NewRecorder()

	h.GetMe(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, errors.ErrorTypeAuthentication, decodeError(t, rec).Error.Type)
}
