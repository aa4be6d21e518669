// Package websocket pushes evaluation events to connected dashboards.
//
// The Hub owns the client set in a single goroutine. Publishers call
// Hub.Publish, which never blocks; slow clients are disconnected.
// Every message is an events.WebSocketMessage.
package websocket
