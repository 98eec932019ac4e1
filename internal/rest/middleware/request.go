package middleware

import (
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or mints one, and echoes it back
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx := types.SetRequestID(c.Request.Context(), requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
