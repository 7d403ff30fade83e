package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 512 * 1024
)

// WebSocket wraps a gorilla connection with lifecycle context and the
// read/write deadlines the gateway expects.
type WebSocket struct {
	*websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWebSocket(parent context.Context, conn *websocket.Conn) *WebSocket {
	ctx, cancel := context.WithCancel(parent)
	return &WebSocket{Conn: conn, ctx: ctx, cancel: cancel}
}

func (w *WebSocket) WriteMessage(data []byte) error {
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteMessage(websocket.TextMessage, data)
}

func (w *WebSocket) Ping() error {
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteMessage(websocket.PingMessage, nil)
}

// ReadLoop pumps inbound frames into onMsg until the peer goes away.
// onPong fires on every pong so the gateway can refresh presence
// heartbeats. Frames are delivered sequentially, which preserves
// per-sender event order on this connection.
func (w *WebSocket) ReadLoop(onMsg func([]byte), onPong func()) {
	defer w.Close()

	w.Conn.SetReadLimit(maxMessageSize)
	w.Conn.SetReadDeadline(time.Now().Add(pongWait))
	w.Conn.SetPongHandler(func(string) error {
		w.Conn.SetReadDeadline(time.Now().Add(pongWait))
		if onPong != nil {
			onPong()
		}
		return nil
	})

	for {
		_, data, err := w.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("ws - read loop - unexpected close", "err", err)
			}
			break
		}
		if len(data) > 0 {
			onMsg(data)
		}
	}
}

func (w *WebSocket) Close() {
	w.cancel()
	_ = w.Conn.Close()
}
