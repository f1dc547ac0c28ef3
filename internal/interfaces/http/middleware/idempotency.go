package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/interfaces/http/dto"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"

	maxIdempotencyKeyLength = 255
)

// IdempotencyConfig configures Idempotency
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated POST carrying the same Idempotency-Key
// within the TTL with 409 DUPLICATE_REQUEST. Keys are scoped per tenant,
// method and path. A request that does not succeed releases its key so the
// client can retry, including one whose handler panicked. If the store is unavailable requests pass through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Store == nil {
		return passThrough
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Idempotency-Key is too long",
				GetRequestID(c),
			))
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		ctx := c.Request.Context()

		fresh, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL)
		if err != nil {
			log.Warn("idempotency store unavailable, skipping check",
				zap.Error(err),
				zap.String("request_id", GetRequestID(c)),
			)
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"A request with this Idempotency-Key was already processed",
				GetRequestID(c),
			))
			return
		}

		defer func() {
			recovered := recover()
			status := c.Writer.Status()
			if recovered != nil || status < http.StatusOK || status >= http.StatusMultipleChoices {
				if err := cfg.Store.Release(ctx, storeKey); err != nil {
					log.Warn("failed to release idempotency key", zap.Error(err))
				}
			}
			if recovered != nil {
				panic(recovered)
			}
		}()

		c.Next()
	}
}

func idempotencyStoreKey(c *gin.Context, key string) string {
	tenant := "-"
	if tenantID, ok := GetTenantID(c); ok {
		tenant = tenantID.String()
	}
	return strings.Join([]string{tenant, c.Request.Method, c.Request.URL.Path, key}, ":")
}
