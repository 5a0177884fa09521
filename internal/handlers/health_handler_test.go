package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

type mockPinger struct {
	pingFn func(ctx context.Context) (string, error)
}

func (m *mockPinger) Ping(ctx context.Context) (string, error) {
	return m.pingFn(ctx)
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("returns database time", func(t *testing.T) {
		h := NewHealthHandler(&mockPinger{pingFn: func(context.Context) (string, error) {
			return "2024-03-01 12:00:00", nil
		}})
		r := gin.New()
		r.GET("/health", h.Health)

		rec := doRequest(r, "GET", "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["status"] != "ok" || result["time"] != "2024-03-01 12:00:00" {
			t.Errorf("unexpected body %v", result)
		}
	})

	t.Run("returns 503 when ping fails", func(t *testing.T) {
		h := NewHealthHandler(&mockPinger{pingFn: func(context.Context) (string, error) {
			return "", errors.New("connection refused")
		}})
		r := gin.New()
		r.GET("/health", h.Health)

		rec := doRequest(r, "GET", "/health", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DATABASE_UNAVAILABLE")
	})
}
