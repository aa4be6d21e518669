package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"ghgcli/internal/compliance"
	"ghgcli/pkg/contracts"
)

type fixedThresholds compliance.Thresholds

func (f fixedThresholds) Thresholds() compliance.Thresholds {
	return compliance.Thresholds(f)
}

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService(nil, fixedThresholds(compliance.DefaultThresholds()), nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name    string
		running bool
		engine  ThresholdSource
		want    string
	}{
		{"all ready", true, fixedThresholds(compliance.DefaultThresholds()), "ready"},
		{"hub stopped", false, fixedThresholds(compliance.DefaultThresholds()), "not_ready"},
		{"invalid thresholds", true, fixedThresholds{Mandatory: 10, Watch: 20}, "not_ready"},
		{"no engine", true, nil, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := new(MockHub)
			hub.On("Running").Return(tt.running)
			hub.On("ClientCount").Return(3).Maybe()

			hs := NewHealthService(hub, tt.engine, nil)
			status := hs.ReadinessCheck(context.Background())

			assert.Equal(t, tt.want, status.Status)
			assert.Contains(t, status.Services, "engine")
			assert.Contains(t, status.Services, "websocket")
		})
	}
}

func TestHealthService_ReadinessWithoutHub(t *testing.T) {
	hs := NewHealthService(nil, fixedThresholds(compliance.DefaultThresholds()), nil)

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)
	assert.Equal(t, "event stream disabled", status.Services["websocket"].Message)
}

func TestHealthService_LivenessAndVersion(t *testing.T) {
	hs := NewHealthService(nil, nil, nil)

	live := hs.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Contains(t, live.Runtime, "goroutines")

	version := hs.Version()
	assert.Equal(t, contracts.Version, version["version"])
	assert.Equal(t, contracts.APIVersion, version["api_version"])
	assert.NotContains(t, version, "git_commit")
}
