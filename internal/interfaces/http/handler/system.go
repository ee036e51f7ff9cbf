package handler

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/erp/crm/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger is a dependency that can report its own health
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime    time.Time
	version      string
	dependencies map[string]Pinger
	pingTimeout  time.Duration
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithDependency adds a named dependency checked by Ping
func WithDependency(name string, p Pinger) SystemOption {
	return func(h *SystemHandler) {
		h.dependencies[name] = p
	}
}

// WithVersion sets the version reported by Info
func WithVersion(version string) SystemOption {
	return func(h *SystemHandler) {
		h.version = version
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		startTime:    time.Now(),
		version:      "dev",
		dependencies: make(map[string]Pinger),
		pingTimeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo handles GET /system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "CRM Opportunity Store",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message      string            `json:"message"`
	Timestamp    string            `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Ping handles GET /system/ping. Every registered dependency is pinged; any
// failure turns the response into a 503 listing each dependency's state.
func (h *SystemHandler) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.pingTimeout)
	defer cancel()

	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	states := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.dependencies[name].Ping(ctx); err != nil {
			healthy = false
			states[name] = err.Error()
			continue
		}
		states[name] = "ok"
	}

	response := PingResponse{
		Message:      "pong",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Dependencies: states,
	}
	if !healthy {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    response,
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeUnavailable,
				Message:   "One or more dependencies are unavailable",
				RequestID: getRequestID(c),
				Timestamp: time.Now().UTC(),
			},
		})
		return
	}
	h.Success(c, response)
}
