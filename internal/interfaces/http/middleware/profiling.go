package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockroom/backend/internal/infrastructure/telemetry"
)

// Profiling attaches Pyroscope labels (resource, route, method, tenant) to
// the request so profiles can be sliced per endpoint. It must run after
// Identity. With enabled false it is a pass-through.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		var tenant string
		if tenantID, ok := GetTenantID(c); ok {
			tenant = tenantID.String()
		}
		labels := telemetry.HTTPRequestLabels(resourceFromRoute(route), route, c.Request.Method, tenant)

		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// resourceFromRoute returns the first static segment after the api prefix:
// "/api/v1/purchase-orders/:id/receive" -> "purchase-orders".
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
