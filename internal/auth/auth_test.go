package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/straye-as/sales-assistant-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret-value-0123456789"

func newTestMiddleware() *Middleware {
	return NewMiddleware(&config.Config{
		ApiKey: config.ApiKeyConfig{Value: "admin-key"},
		Auth:   config.AuthConfig{JWTSecret: testSecret, Issuer: "sales-assistant"},
	}, zap.NewNop())
}

func TestJWTValidator(t *testing.T) {
	v := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, Issuer: "sales-assistant"})
	tenantID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		token, err := v.IssueToken("manager@shop", tenantID, time.Hour)
		require.NoError(t, err)

		p, err := v.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "manager@shop", p.Subject)
		assert.Equal(t, AuthTypeJWT, p.AuthType)
		require.NotNil(t, p.TenantID)
		assert.Equal(t, tenantID, *p.TenantID)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := v.IssueToken("manager@shop", tenantID, -time.Minute)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTValidator(&config.AuthConfig{JWTSecret: "another-secret", Issuer: "sales-assistant"})
		token, err := other.IssueToken("x", tenantID, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTValidator(&config.AuthConfig{JWTSecret: testSecret, Issuer: "someone-else"})
		token, err := other.IssueToken("x", tenantID, time.Hour)
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing tenant claim", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "x",
			Issuer:    "sales-assistant",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = v.ValidateToken(token)
		assert.ErrorIs(t, err, ErrMissingTenant)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewJWTValidator(&config.AuthConfig{}).ValidateToken("abc")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestPrincipal_CanAccessTenant(t *testing.T) {
	tenantID := uuid.New()
	system := &Principal{Subject: SystemSubject, AuthType: AuthTypeAPIKey}
	scoped := &Principal{Subject: "m", AuthType: AuthTypeJWT, TenantID: &tenantID}

	assert.True(t, system.CanAccessTenant(uuid.New()))
	assert.True(t, scoped.CanAccessTenant(tenantID))
	assert.False(t, scoped.CanAccessTenant(uuid.New()))
	assert.False(t, (&Principal{AuthType: AuthTypeJWT}).CanAccessTenant(tenantID))
}

func tenantRouter(m *Middleware) http.Handler {
	r := chi.NewRouter()
	r.Use(m.Authenticate)
	r.With(m.RequireTenantAccess("tenantId")).Get("/tenants/{tenantId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(m.RequireSystem).Post("/run", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	return r
}

func TestMiddleware(t *testing.T) {
	m := newTestMiddleware()
	router := tenantRouter(m)
	tenantID := uuid.New()
	token, err := m.jwtValidator.IssueToken("manager", tenantID, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		header map[string]string
		want   int
	}{
		{"no credentials", http.MethodGet, "/tenants/" + tenantID.String(), nil, http.StatusUnauthorized},
		{"bad api key", http.MethodGet, "/tenants/" + tenantID.String(), map[string]string{"x-api-key": "nope"}, http.StatusUnauthorized},
		{"api key any tenant", http.MethodGet, "/tenants/" + uuid.NewString(), map[string]string{"x-api-key": "admin-key"}, http.StatusNoContent},
		{"token own tenant", http.MethodGet, "/tenants/" + tenantID.String(), map[string]string{"Authorization": "Bearer " + token}, http.StatusNoContent},
		{"token other tenant", http.MethodGet, "/tenants/" + uuid.NewString(), map[string]string{"Authorization": "Bearer " + token}, http.StatusForbidden},
		{"malformed header", http.MethodGet, "/tenants/" + tenantID.String(), map[string]string{"Authorization": token}, http.StatusUnauthorized},
		{"invalid tenant id", http.MethodGet, "/tenants/not-a-uuid", map[string]string{"x-api-key": "admin-key"}, http.StatusBadRequest},
		{"run with api key", http.MethodPost, "/run", map[string]string{"x-api-key": "admin-key"}, http.StatusAccepted},
		{"run with token", http.MethodPost, "/run", map[string]string{"Authorization": "Bearer " + token}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
