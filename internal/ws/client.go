package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/pkg/types"
)

const (
	outboxSize   = 16
	writeTimeout = 3 * time.Second
)

// Client is one live connection. Outbound events go through a bounded outbox
// drained by writeLoop; a full outbox means the consumer is too slow and the
// whole connection is torn down rather than blocking a broadcast.
type Client struct {
	id     string
	conn   *websocket.Conn
	outbox chan types.Envelope
	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(parent context.Context, conn *websocket.Conn, id string) *Client {
	ctx, cancel := context.WithCancel(parent)
	return &Client{
		id:     id,
		conn:   conn,
		outbox: make(chan types.Envelope, outboxSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) ConnID() string { return c.id }

// Send enqueues without blocking. False means the client is gone or too slow;
// in the slow case the connection is cancelled so the read loop unwinds.
func (c *Client) Send(env types.Envelope) bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
	}
	select {
	case c.outbox <- env:
		return true
	default:
		c.cancel()
		return false
	}
}

func (c *Client) writeLoop(logger *zap.Logger) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case env := <-c.outbox:
			payload, err := json.Marshal(env)
			if err != nil {
				logger.Error("encode envelope", zap.String("event", env.Event), zap.Error(err))
				continue
			}
			wctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err = c.conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				c.cancel()
				return
			}
		}
	}
}
