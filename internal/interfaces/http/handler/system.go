package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/webstudio/backend/internal/infrastructure/logger"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// readinessTimeout bounds every dependency check
const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether a dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]ReadinessCheck
	now       func() time.Time
}

// SystemHandlerOption configures the system handler
type SystemHandlerOption func(*SystemHandler)

// WithReadinessCheck registers a dependency checked by /ready
func WithReadinessCheck(name string, check ReadinessCheck) SystemHandlerOption {
	return func(h *SystemHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, log *zap.Logger, opts ...SystemHandlerOption) *SystemHandler {
	h := &SystemHandler{
		BaseHandler: BaseHandler{logger: log},
		name:        name,
		version:     version,
		startTime:   time.Now(),
		checks:      make(map[string]ReadinessCheck),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Webstudio API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    h.now().Sub(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
// @name HandlerPingResponse
type PingResponse struct {
	Message   string `json:"message" example:"pong"`
	Timestamp string `json:"timestamp" example:"2026-01-23T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

// HealthResponse is the liveness and readiness payload
// @name HandlerHealthResponse
type HealthResponse struct {
	Status string            `json:"status" example:"healthy"`
	Time   string            `json:"time" example:"2026-01-23T12:00:00Z"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health godoc
// @ID           healthSystem
// @Summary      Liveness check
// @Description  Answers as long as the process serves HTTP
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   h.now().UTC().Format(time.RFC3339),
	})
}

// Ready godoc
// @ID           readySystem
// @Summary      Readiness check
// @Description  Checks the database and cache connections
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{Status: "healthy", Checks: make(map[string]string, len(names))}
	status := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			logger.GetGinLogger(c).Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			resp.Checks[name] = "error"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Time = h.now().UTC().Format(time.RFC3339)
	c.JSON(status, resp)
}

// Metrics serves a scrape endpoint, or 404 when the prometheus exporter is off
func Metrics(handler http.Handler) gin.HandlerFunc {
	if handler == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusNotFound, dto.Fail(dto.ErrCodeNotFound, "Metrics exporter is disabled", getRequestID(c)))
		}
	}
	return gin.WrapH(handler)
}
