package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/infrastructure/auth"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

const (
	TenantIDKey   = "tenant_id"
	UserIDKey     = "user_id"
	UsernameKey   = "username"
	AuthSourceKey = "auth_source"

	TenantHeader = "X-Tenant-ID"
	UserHeader   = "X-User-ID"
	bearerPrefix = "Bearer "
)

// TokenVerifier turns a bearer token into an identity
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// IdentityConfig configures Identity
type IdentityConfig struct {
	// Verifier checks bearer tokens. Nil disables token auth.
	Verifier TokenVerifier
	// HeaderFallback accepts X-Tenant-ID / X-User-ID when no bearer token is
	// sent. Meant for service-to-service calls behind a gateway that already
	// authenticated the caller.
	HeaderFallback bool
	Logger         *zap.Logger
}

// Identity resolves the tenant and acting user of a request. A bearer token
// wins over headers. Requests without a tenant are rejected with 401; the
// user is optional here and required by the handlers that record an actor.
func Identity(cfg IdentityConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		var (
			id     auth.Identity
			source string
		)

		header := c.GetHeader("Authorization")
		switch {
		case header != "" && cfg.Verifier != nil:
			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" {
				abortUnauthorized(c, auth.ErrInvalidToken)
				return
			}
			verified, err := cfg.Verifier.Verify(token)
			if err != nil {
				log.Warn("token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
				abortUnauthorized(c, err)
				return
			}
			id, source = verified, "jwt"

		case cfg.HeaderFallback:
			fromHeaders, err := identityFromHeaders(c)
			if err != nil {
				abortUnauthorized(c, err)
				return
			}
			id, source = fromHeaders, "header"

		default:
			abortUnauthorized(c, auth.ErrInvalidToken)
			return
		}

		c.Set(TenantIDKey, id.TenantID)
		c.Set(AuthSourceKey, source)
		if id.UserID != uuid.Nil {
			c.Set(UserIDKey, id.UserID)
		}
		if id.Username != "" {
			c.Set(UsernameKey, id.Username)
		}

		ctx := logger.WithTenantID(c.Request.Context(), id.TenantID.String())
		if id.UserID != uuid.Nil {
			ctx = logger.WithUserID(ctx, id.UserID.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func identityFromHeaders(c *gin.Context) (auth.Identity, error) {
	tenant := c.GetHeader(TenantHeader)
	if tenant == "" {
		return auth.Identity{}, auth.ErrMissingTenantID
	}
	tenantID, err := uuid.Parse(tenant)
	if err != nil {
		return auth.Identity{}, auth.ErrMissingTenantID
	}

	id := auth.Identity{TenantID: tenantID}
	if user := c.GetHeader(UserHeader); user != "" {
		userID, err := uuid.Parse(user)
		if err != nil {
			return auth.Identity{}, auth.ErrMissingUserID
		}
		id.UserID = userID
	}
	return id, nil
}

func abortUnauthorized(c *gin.Context, err error) {
	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, auth.ErrMissingTenantID):
		message = "A valid tenant id is required"
	case errors.Is(err, auth.ErrMissingUserID):
		message = "A valid user id is required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetTenantID returns the tenant resolved by Identity
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, TenantIDKey)
}

// GetUserID returns the acting user resolved by Identity
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	return uuidFromContext(c, UserIDKey)
}

func uuidFromContext(c *gin.Context, key string) (uuid.UUID, bool) {
	v, exists := c.Get(key)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
