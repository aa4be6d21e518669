package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"ghgcli/internal/compliance"
	"ghgcli/pkg/contracts"
)

// HubStatus reports the state of the event hub
type HubStatus interface {
	ClientCount() int
	Running() bool
}

// ThresholdSource exposes the thresholds an evaluator classifies against
type ThresholdSource interface {
	Thresholds() compliance.Thresholds
}

// HealthService provides health check functionality
type HealthService struct {
	hub       HubStatus
	engine    ThresholdSource
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. hub may be nil when
// the event stream is not served.
func NewHealthService(hub HubStatus, engine ThresholdSource, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		hub:       hub,
		engine:    engine,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.Duration("uptime", time.Since(hs.startTime)))

	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"engine":    hs.checkEngineHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for name, service := range status.Services {
		if service.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "ReadinessCheck: service not ready",
				slog.String("service", name),
				slog.String("message", service.Message))
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	result := map[string]interface{}{
		"version":       info.Version,
		"go_version":    info.GoVersion,
		"os":            info.OS,
		"arch":          info.Architecture,
		"api_version":   info.APIVersion,
		"report_format": info.ReportFormat,
		"uptime":        time.Since(hs.startTime).Seconds(),
		"start_time":    hs.startTime.Format(time.RFC3339),
	}

	if info.BuildTime != "unknown" {
		result["build_time"] = info.BuildTime
	}
	if info.GitCommit != "unknown" {
		result["git_commit"] = info.GitCommit
	}

	return result
}

func (hs *HealthService) checkEngineHealth() ServiceHealth {
	if hs.engine == nil {
		return ServiceHealth{Status: "not_ready", Message: "report engine not initialized"}
	}
	if err := hs.engine.Thresholds().Validate(); err != nil {
		return ServiceHealth{Status: "not_ready", Message: fmt.Sprintf("invalid thresholds: %v", err)}
	}
	return ServiceHealth{Status: "ready", Message: "report engine is healthy"}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: "ready", Message: "event stream disabled"}
	}
	if !hs.hub.Running() {
		return ServiceHealth{Status: "not_ready", Message: "event hub is not running"}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d client(s) connected", hs.hub.ClientCount()),
	}
}
