package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/auth"
	"github.com/fleetledger/fleetledger/internal/config"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/sentry"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(cfg *config.Configuration, handler gin.HandlerFunc) *gin.Engine {
	log := logger.NewNoopLogger()
	r := gin.New()
	r.Use(
		RequestIDMiddleware,
		ErrorHandler(sentry.NewSentryService(cfg, log), log),
		AuthenticateMiddleware(cfg, log),
	)
	r.GET("/probe", handler)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ierr.ErrorResponse {
	t.Helper()
	var resp ierr.ErrorResponse
	require.NoError(t, jsoniter.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorHandler_RendersHintAndDetails(t *testing.T) {
	r := newTestRouter(config.GetDefaultConfig(), func(c *gin.Context) {
		c.Error(ierr.NewError("invoice inv_1 missing from store").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"invoice_id": "inv_1"}).
			Mark(ierr.ErrNotFound))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invoice not found", resp.Error.Display)
	assert.Equal(t, "inv_1", resp.Error.Details["invoice_id"])
}

func TestErrorHandler_HidesUnhintedCause(t *testing.T) {
	r := newTestRouter(config.GetDefaultConfig(), func(c *gin.Context) {
		c.Error(ierr.NewError("dynamodb: connection reset").Mark(ierr.ErrDatabase))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Display)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRequestID_EchoesCallerHeader(t *testing.T) {
	var seen string
	r := newTestRouter(config.GetDefaultConfig(), func(c *gin.Context) {
		seen = types.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(types.HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(types.HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.NotEmpty(t, w.Header().Get(types.HeaderRequestID))
}

func TestAuthenticate_GuestWhenDisabled(t *testing.T) {
	var user string
	r := newTestRouter(config.GetDefaultConfig(), func(c *gin.Context) {
		user = types.GetUserID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, types.DefaultUserID, user)
}

func TestAuthenticate_BearerToken(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, Secret: "s3cret"}

	var user string
	r := newTestRouter(cfg, func(c *gin.Context) {
		user = types.GetUserID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	token, err := auth.NewTokenValidator("s3cret").GenerateToken("usr_dispatch", time.Hour)
	require.NoError(t, err)
	forged, err := auth.NewTokenValidator("other").GenerateToken("usr_dispatch", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user = ""
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set(types.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "usr_dispatch", user)
			} else {
				assert.Empty(t, user)
			}
		})
	}
}
