package hub

import (
	"time"

	"github.com/gorilla/websocket"
)

// WSTransport adapts a gorilla WebSocket connection to the Transport
// interface, applying read limits and the deadline/pong discipline.
type WSTransport struct {
	conn      *websocket.Conn
	pongWait  time.Duration
	writeWait time.Duration
}

// NewWSTransport wraps a WebSocket connection.
func NewWSTransport(conn *websocket.Conn, maxMessageSize int64, pongWait, writeWait time.Duration) *WSTransport {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return &WSTransport{
		conn:      conn,
		pongWait:  pongWait,
		writeWait: writeWait,
	}
}

func (t *WSTransport) ReadFrame() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	return data, err
}

func (t *WSTransport) WriteFrame(data []byte) error {
	t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *WSTransport) Ping() error {
	t.conn.SetWriteDeadline(time.Now().Add(t.writeWait))
	return t.conn.WriteMessage(websocket.PingMessage, nil)
}

func (t *WSTransport) Close() error {
	return t.conn.Close()
}
