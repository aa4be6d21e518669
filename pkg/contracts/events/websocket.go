// Package events contains the event contracts pushed to dashboards over
// the WebSocket stream.
package events

import (
	"time"

	"ghgcli/pkg/contracts/domain"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Report messages
	MessageTypeReportGenerated  MessageType = "report:generated"
	MessageTypeEvaluationFailed MessageType = "evaluation:failed"

	// Inbox watcher messages
	MessageTypeWatchProcessed MessageType = "watch:processed"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
)

// Event sources
const (
	SourceAPI    = "api"
	SourceUpload = "upload"
	SourceWatch  = "watch"
	SourceCLI    = "cli"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ReportGenerated is published after every successful evaluation
type ReportGenerated struct {
	Source   string                `json:"source"`
	FileName string                `json:"file_name,omitempty"`
	Records  int                   `json:"records"`
	Total    float64               `json:"total_tco2e"`
	Tier     domain.ComplianceTier `json:"tier"`
	Label    string                `json:"label"`
	Severity int                   `json:"severity"`
	Style    domain.AlertStyle     `json:"style"`
	Bytes    int                   `json:"bytes,omitempty"`
}

// EvaluationFailed is published when a dataset is rejected
type EvaluationFailed struct {
	Source   string `json:"source"`
	FileName string `json:"file_name,omitempty"`
	Error    string `json:"error"`
}

// WatchProcessed is published for every inbox file handled by the watcher
type WatchProcessed struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ConnectMessage is sent to a client right after it registers
type ConnectMessage struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
	Message  string `json:"message"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
