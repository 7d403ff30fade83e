package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const pingPeriod = 45 * time.Second

// RuntimeClient serializes all outbound writes for one connection through
// a buffered channel and a single write loop, so concurrent router sends
// never interleave frames and per-pair wire order is preserved.
type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	connID string
	out    chan []byte
	once   sync.Once
}

func NewClient(parent context.Context, ws *WebSocket) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		connID: uuid.NewString(),
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

// ConnID is the opaque handle the presence registry addresses sends by.
func (c *RuntimeClient) ConnID() string { return c.connID }

func (c *RuntimeClient) Send(data []byte) error {
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return errors.New("client closed")
	}
}

// Close is idempotent. The out channel is never closed: concurrent Sends
// race with shutdown, and cancellation already unblocks both sides.
func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		case <-ticker.C:
			if err := c.ws.Ping(); err != nil {
				return
			}
		}
	}
}
