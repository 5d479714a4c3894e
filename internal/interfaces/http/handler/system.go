package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/persistence"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"github.com/wms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type poolStatser interface {
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler handles liveness and build information
type SystemHandler struct {
	BaseHandler
	db        Pinger
	name      string
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, name, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// Health handles GET /health. It answers 503 when the database does not
// respond within two seconds.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
			return
		}
	}
	h.Success(c, resp)
}

// InfoResponse represents the system information response
type InfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`

	DatabasePool *persistence.ConnectionStats `json:"database_pool,omitempty"`
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	resp := InfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if ps, ok := h.db.(poolStatser); ok {
		if stats, err := ps.Stats(); err == nil {
			resp.DatabasePool = &stats
		}
	}
	h.Success(c, resp)
}

// SystemRoutes returns the health and info routes
func SystemRoutes(h *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "")
	group.GET("/health", h.Health)
	group.GET("/system/info", h.Info)
	return group
}
