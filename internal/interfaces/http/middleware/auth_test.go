package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

const testSecret = "test-secret-key-that-is-long-enough"

type identityProbe struct {
	TenantID    uuid.UUID
	HasTenant   bool
	UserID      uuid.UUID
	HasUser     bool
	LogTenantID string
	LogUserID   string
}

func newIdentityRouter(cfg IdentityConfig, probe *identityProbe) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Identity(cfg))
	router.GET("/orders", func(c *gin.Context) {
		probe.TenantID, probe.HasTenant = GetTenantID(c)
		probe.UserID, probe.HasUser = GetUserID(c)
		probe.LogTenantID = logger.GetTenantID(c.Request.Context())
		probe.LogUserID = logger.GetUserID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return router
}

func TestIdentity_BearerToken(t *testing.T) {
	jwtService := auth.NewJWTService(config.JWTConfig{Secret: testSecret, Issuer: "test-issuer"})
	tenantID, userID := uuid.New(), uuid.New()

	var probe identityProbe
	router := newIdentityRouter(IdentityConfig{Verifier: jwtService}, &probe)

	t.Run("valid token sets tenant and user", func(t *testing.T) {
		token, err := jwtService.Sign(auth.Identity{TenantID: tenantID, UserID: userID}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, probe.HasTenant)
		assert.Equal(t, tenantID, probe.TenantID)
		assert.True(t, probe.HasUser)
		assert.Equal(t, userID, probe.UserID)
		assert.Equal(t, tenantID.String(), probe.LogTenantID)
		assert.Equal(t, userID.String(), probe.LogUserID)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := jwtService.Sign(auth.Identity{TenantID: tenantID, UserID: userID}, -time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-that-is-long-enough", Issuer: "test-issuer"})
		token, err := other.Sign(auth.Identity{TenantID: tenantID, UserID: userID}, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeTokenInvalid, resp.Error.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("no credentials without header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set(TenantHeader, tenantID.String())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestIdentity_HeaderFallback(t *testing.T) {
	tenantID, userID := uuid.New(), uuid.New()

	var probe identityProbe
	router := newIdentityRouter(IdentityConfig{HeaderFallback: true}, &probe)

	tests := []struct {
		name       string
		tenant     string
		user       string
		wantStatus int
		wantUser   bool
	}{
		{"tenant and user", tenantID.String(), userID.String(), http.StatusOK, true},
		{"tenant only", tenantID.String(), "", http.StatusOK, false},
		{"missing tenant", "", userID.String(), http.StatusUnauthorized, false},
		{"malformed tenant", "not-a-uuid", "", http.StatusUnauthorized, false},
		{"malformed user", tenantID.String(), "not-a-uuid", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe = identityProbe{}
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.tenant != "" {
				req.Header.Set(TenantHeader, tt.tenant)
			}
			if tt.user != "" {
				req.Header.Set(UserHeader, tt.user)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tenantID, probe.TenantID)
				assert.Equal(t, tt.wantUser, probe.HasUser)
			}
		})
	}
}

func TestGetTenantID_NotSet(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	id, ok := GetTenantID(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)

	c.Set(TenantIDKey, "not-a-uuid-value")
	_, ok = GetTenantID(c)
	assert.False(t, ok)
}
