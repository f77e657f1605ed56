package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/attractify/onboarding/internal/interfaces/http/dto"
)

// HealthCheck probes one dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SystemHandler serves health and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	driver    string
	ready     func() bool
	checks    []HealthCheck
	startTime time.Time
	timeout   time.Duration
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithReadiness reports not ready until fn returns true
func WithReadiness(fn func() bool) SystemOption {
	return func(h *SystemHandler) {
		h.ready = fn
	}
}

// WithHealthCheck adds a dependency probe to /health
func WithHealthCheck(name string, check func(ctx context.Context) error) SystemOption {
	return func(h *SystemHandler) {
		h.checks = append(h.checks, HealthCheck{Name: name, Check: check})
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version, driver string, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		name:      name,
		version:   version,
		driver:    driver,
		ready:     func() bool { return true },
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse is the /health payload
type HealthResponse struct {
	Status string            `json:"status"`
	Store  string            `json:"store"`
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
	Uptime string            `json:"uptime"`
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status: "ok",
		Store:  h.driver,
		Ready:  h.ready(),
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	}
	if !resp.Ready {
		resp.Status = "starting"
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for _, check := range h.checks {
			if err := check.Check(ctx); err != nil {
				resp.Checks[check.Name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[check.Name] = "ok"
		}
	}

	envelope := dto.NewSuccessResponse(resp)
	if resp.Status != "ok" {
		envelope.Success = false
		c.JSON(http.StatusServiceUnavailable, envelope)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Store     string `json:"store"`
	Uptime    string `json:"uptime"`
}

// Info handles GET /system/info
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Store:     h.driver,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
