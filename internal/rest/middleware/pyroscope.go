package middleware

import (
	"context"
	"fmt"

	"github.com/fleetledger/fleetledger/internal/pyroscope"
	"github.com/gin-gonic/gin"
)

// PyroscopeMiddleware labels the profile samples of a request with its route
func PyroscopeMiddleware(svc *pyroscope.Service) gin.HandlerFunc {
	if !svc.IsEnabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		labels := map[string]string{
			"method":   c.Request.Method,
			"endpoint": c.FullPath(),
			"handler":  fmt.Sprintf("%s %s", c.Request.Method, c.FullPath()),
		}
		svc.TagWrapper(c.Request.Context(), labels, func(_ context.Context) {
			c.Next()
		})
	}
}
