package handler

import (
	"net/http"
	"time"

	"github.com/straye-as/sales-assistant-api/internal/database"
	"gorm.io/gorm"
)

// HealthResponse is the body of the health endpoints
type HealthResponse struct {
	Status   string          `json:"status"`
	Time     time.Time       `json:"time"`
	Database *database.Stats `json:"database,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC()})
}

// Database godoc
// @Summary Database health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/db [get]
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(r.Context(), h.db)
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Time:   time.Now().UTC(),
			Error:  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: time.Now().UTC(), Database: stats})
}
