package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodOptions, "/ping", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("missing allow-origin header")
		}
	})

	t.Run("simple request passes through", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
		if rec.Header().Get("Access-Control-Expose-Headers") == "" {
			t.Error("missing expose-headers header")
		}
	})
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	t.Run("reuses incoming request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(requestIDHeader, "client-123")
		rec := serve(r, req)
		if rec.Header().Get(requestIDHeader) != "client-123" || rec.Body.String() != "client-123" {
			t.Errorf("expected request id to be reused, got header %q body %q",
				rec.Header().Get(requestIDHeader), rec.Body.String())
		}
	})

	t.Run("generates request id", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Header().Get(requestIDHeader) == "" {
			t.Error("expected a generated request id")
		}
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.WithFields(apperrors.ErrInvalidInput, []apperrors.FieldError{{Field: "name", Message: "is required"}}))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "already")
		_ = c.Error(errors.New("late"))
	})

	t.Run("app error keeps status and fields", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/app", nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		want := `{"error":{"code":"INVALID_INPUT","fields":[{"field":"name","message":"is required"}],"message":"Invalid input"}}`
		if rec.Body.String() != want {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})

	t.Run("written response is left alone", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
		if rec.Code != http.StatusTeapot || rec.Body.String() != "already" {
			t.Errorf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})
}
