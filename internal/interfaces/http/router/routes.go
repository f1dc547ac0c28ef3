package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stockroom/backend/internal/infrastructure/logger"
	"github.com/stockroom/backend/internal/infrastructure/telemetry"
	"github.com/stockroom/backend/internal/interfaces/http/handler"
	"github.com/stockroom/backend/internal/interfaces/http/middleware"
)

// Dependencies are the collaborators the HTTP surface is built from.
// MeterProvider, Verifier and IdempotencyStore may be nil.
type Dependencies struct {
	Config           *config.Config
	Logger           *zap.Logger
	MeterProvider    *telemetry.MeterProvider
	Verifier         middleware.TokenVerifier
	IdempotencyStore shared.IdempotencyStore
	System           *handler.SystemHandler
	PurchaseOrders   *handler.PurchaseOrderHandler
}

// New builds the engine with the full middleware stack.
//
// Order: request id, access log, panic recovery, security headers, CORS,
// tracing, body limit and metrics on every route; identity, span attributes,
// idempotency and compression on /api/v1 only.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: deps.MeterProvider,
		Enabled:       cfg.Telemetry.Enabled,
		Logger:        log,
	}))

	if deps.System != nil {
		engine.GET("/health", deps.System.Health)
		engine.GET("/system/info", deps.System.GetSystemInfo)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.Identity(middleware.IdentityConfig{
		Verifier:       deps.Verifier,
		HeaderFallback: cfg.JWT.AllowHeaderIdentity,
		Logger:         log,
	}))
	r.Use(middleware.TracingAttributes())
	r.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	if cfg.Procurement.IdempotencyEnabled && deps.IdempotencyStore != nil {
		r.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  deps.IdempotencyStore,
			TTL:    cfg.Procurement.IdempotencyTTL,
			Logger: log,
		}))
	}
	// workbooks are already zip containers
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/export$`})))

	if deps.PurchaseOrders != nil {
		orders, lines := PurchaseOrderRoutes(deps.PurchaseOrders)
		r.Register(orders).Register(lines)
	}
	r.Setup()

	return engine
}

// PurchaseOrderRoutes returns the order and line route groups
func PurchaseOrderRoutes(h *handler.PurchaseOrderHandler) (orders, lines *DomainGroup) {
	orders = NewDomainGroup("purchase-orders", "/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/statistics", h.GetStatistics)
	orders.GET("/export", h.ExportOrders)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.UpdateHeader)
	orders.DELETE("/:id", h.Delete)
	orders.GET("/:id/export", h.ExportReceivingSheet)
	orders.POST("/:id/lines", h.AddLines)
	orders.POST("/:id/submit", h.Submit)
	orders.POST("/:id/approve", h.Approve)
	orders.POST("/:id/reject", h.Reject)
	orders.POST("/:id/cancel", h.Cancel)
	orders.POST("/:id/close", h.Close)
	orders.POST("/:id/receive", h.Receive)

	lines = NewDomainGroup("purchase-order-lines", "/purchase-order-lines")
	lines.PUT("/:id", h.UpdateLine)
	lines.DELETE("/:id", h.DeleteLine)

	return orders, lines
}
