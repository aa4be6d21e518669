package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"ghgcli/internal/compliance"
	"ghgcli/internal/shared/testutil"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

// MockPublisher is a mock for the EventPublisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, messageType events.MessageType, data interface{}) {
	m.Called(ctx, messageType, data)
}

// MockHub is a mock for the HubStatus interface
type MockHub struct {
	mock.Mock
}

func (m *MockHub) ClientCount() int {
	return m.Called().Int(0)
}

func (m *MockHub) Running() bool {
	return m.Called().Bool(0)
}

func newTestService(t *testing.T, strict bool, opts ...Option) *ReportService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewReportService(ReportServiceConfig{
		DefaultFactor: domain.DefaultFactor(),
		Thresholds:    compliance.DefaultThresholds(),
		Strict:        strict,
	}, logger, opts...)
}
