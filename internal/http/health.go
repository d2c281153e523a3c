package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/database"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Version       string `json:"version,omitempty"`
	Database      string `json:"database"`
	Mirror        string `json:"mirror"`
}

type HealthController struct {
	db        *database.Database
	mirrored  bool
	version   string
	startedAt time.Time
}

func NewHealthController(db *database.Database, mirrored bool, version string) *HealthController {
	return &HealthController{
		db:        db,
		mirrored:  mirrored,
		version:   version,
		startedAt: time.Now(),
	}
}

func (h *HealthController) Status(c *gin.Context) {
	resp := HealthResponse{
		Status:        "healthy",
		Time:          time.Now().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Version:       h.version,
		Database:      "ok",
		Mirror:        "not configured",
	}
	if h.mirrored {
		resp.Mirror = "configured"
	}

	sqlDB, err := h.db.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		resp.Status = "unhealthy"
		resp.Database = "error: " + err.Error()
		c.IndentedJSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.IndentedJSON(http.StatusOK, resp)
}
