package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghgcli/internal/infrastructure"
	"ghgcli/internal/shared/testutil"
	"ghgcli/pkg/contracts/domain"
	"ghgcli/pkg/contracts/events"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func decode(t *testing.T, raw []byte) events.WebSocketMessage {
	t.Helper()
	var msg events.WebSocketMessage
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHub_StartStopIdempotent(t *testing.T) {
	hub := NewHub(nil)
	assert.False(t, hub.Running())

	hub.Start()
	hub.Start()
	assert.True(t, hub.Running())

	hub.Stop()
	hub.Stop()
	assert.False(t, hub.Running())
}

func TestHub_RegisterSendsConnectMessage(t *testing.T) {
	hub := startHub(t)
	conn := newMockConnection()

	client := ServeWS(hub, conn, "trace-1", nil)

	require.Eventually(t, func() bool { return len(conn.messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	msg := decode(t, conn.messages()[0])
	assert.Equal(t, events.MessageTypeConnect, msg.Type)
	assert.Equal(t, "trace-1", msg.TraceID)
	assert.Equal(t, client.ID(), msg.Data.(map[string]interface{})["client_id"])
}

func TestHub_PublishReachesEveryClient(t *testing.T) {
	hub := startHub(t)
	a, b := newMockConnection(), newMockConnection()
	ServeWS(hub, a, "", nil)
	ServeWS(hub, b, "", nil)

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	ctx := infrastructure.WithTraceID(context.Background(), "req-42")
	hub.Publish(ctx, events.MessageTypeReportGenerated, events.ReportGenerated{
		Source: events.SourceAPI,
		Total:  4.44,
		Tier:   domain.TierVoluntary,
	})

	for _, conn := range []*mockConnection{a, b} {
		require.Eventually(t, func() bool { return len(conn.messages()) == 2 }, time.Second, 10*time.Millisecond)
		msg := decode(t, conn.messages()[1])
		assert.Equal(t, events.MessageTypeReportGenerated, msg.Type)
		assert.Equal(t, "req-42", msg.TraceID)
		assert.Equal(t, "VOLUNTARY", msg.Data.(map[string]interface{})["tier"])
	}
	assert.Equal(t, int64(2), hub.Stats().MessagesSent)
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub := startHub(t)
	conn := newMockConnection()
	ServeWS(hub, conn, "", nil)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), hub.Stats().TotalConnections)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := startHub(t)
	hub.Publish(context.Background(), events.MessageTypeWatchProcessed, events.WatchProcessed{Status: "ok"})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(nil) // not started, nothing drains the queue

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastQueueSize+10; i++ {
			hub.Publish(context.Background(), events.MessageTypeReportGenerated, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
	assert.Equal(t, int64(10), hub.Stats().MessagesDropped)
}

func TestHub_OverRealConnection(t *testing.T) {
	hub := startHub(t)

	upgrader := gorilla.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ServeWS(hub, WrapConn(c), "", nil)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, events.MessageTypeConnect, decode(t, raw).Type)

	hub.Publish(context.Background(), events.MessageTypeReportGenerated, events.ReportGenerated{Records: 2})

	_, raw, err = ws.ReadMessage()
	require.NoError(t, err)
	msg := decode(t, raw)
	assert.Equal(t, events.MessageTypeReportGenerated, msg.Type)
	assert.EqualValues(t, 2, msg.Data.(map[string]interface{})["records"])
}
