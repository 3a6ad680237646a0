package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	dbPing    func() error
}

// NewSystemHandler creates a new SystemHandler. dbPing may be nil when no
// database check is wanted.
func NewSystemHandler(dbPing func() error) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		dbPing:    dbPing,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if h.dbPing != nil {
		if err := h.dbPing(); err != nil {
			response.Status = "degraded"
			response.Database = "unreachable"
			h.Success(c, response)
			return
		}
		response.Database = "ok"
	}

	h.Success(c, response)
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}
