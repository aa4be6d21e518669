package websocket

import (
	"github.com/gorilla/websocket"
)

// conn adapts a gorilla connection to Connection
type conn struct {
	*websocket.Conn
}

// WrapConn wraps an upgraded gorilla connection
func WrapConn(c *websocket.Conn) Connection {
	return &conn{Conn: c}
}

// RemoteAddr returns the remote network address as a string
func (c *conn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
