package middleware

import (
	"time"

	"github.com/fleetledger/fleetledger/internal/sentry"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware attaches a Sentry hub to each request and recovers panics into events
func SentryMiddleware(svc *sentry.Service) gin.HandlerFunc {
	if !svc.Enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}
