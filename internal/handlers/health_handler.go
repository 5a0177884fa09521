package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "spendtrack/internal/errors"
)

// Pinger reports database connectivity along with the server clock.
type Pinger interface {
	Ping(ctx context.Context) (string, error)
}

// HealthHandler serves the connectivity probe.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse is returned when the database answers.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health checks that the database is reachable
// @Summary     Health check
// @Description Ping the database and report its current time
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse "Database reachable"
// @Failure     503 {object} ErrorResponse "Database unavailable"
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	now, err := h.db.Ping(ctx)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrDatabaseUnavailable, err))
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Time: now})
}
