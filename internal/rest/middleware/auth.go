package middleware

import (
	"net/http"
	"strings"

	"github.com/fleetledger/fleetledger/internal/auth"
	"github.com/fleetledger/fleetledger/internal/config"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/gin-gonic/gin"
)

// GuestAuthenticateMiddleware lets every request through as the default user. It is used
// when auth.enabled is false.
func GuestAuthenticateMiddleware(c *gin.Context) {
	ctx := types.SetUserID(c.Request.Context(), types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// AuthenticateMiddleware requires a Bearer JWT signed with auth.secret and puts its user
// into the request context
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	if !cfg.Auth.Enabled {
		return GuestAuthenticateMiddleware
	}

	validator := auth.NewTokenValidator(cfg.Auth.Secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logger.Debugw("rejected bearer token", "error", err)
			abortUnauthorized(c, "Invalid token")
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.UserID)
		ctx = types.SetJWT(ctx, authHeader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, hint string) {
	c.Error(ierr.NewError("unauthorized").
		WithHint(hint).
		Mark(ierr.ErrPermissionDenied))
	c.AbortWithStatusJSON(http.StatusUnauthorized, ierr.ErrorResponse{
		Success: false,
		Error:   ierr.ErrorDetail{Display: hint},
	})
}
