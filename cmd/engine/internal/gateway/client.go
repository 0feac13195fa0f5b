package gateway

import (
	"encoding/json"
	"io"
	"net"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
)

const (
	maxMessageSize = 512 * 1024
)

// Client adapts one WebSocket connection to the engine: the read pump feeds
// inbound messages to the realtime handler, the write pump drains the
// connection's outbound event queue onto the wire.
type Client struct {
	id       string
	conn     net.Conn
	queue    *realtime.Queue
	registry *realtime.Registry
	subs     *realtime.Subscriptions
	handler  *realtime.Handler
	logger   *zap.Logger

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClient(
	conn net.Conn,
	registry *realtime.Registry,
	subs *realtime.Subscriptions,
	handler *realtime.Handler,
	queueSize int,
	logger *zap.Logger,
) *Client {
	return &Client{
		id:         uuid.NewString(),
		conn:       conn,
		queue:      realtime.NewQueue(queueSize),
		registry:   registry,
		subs:       subs,
		handler:    handler,
		logger:     logger,
		writeWait:  5 * time.Second,
		pongWait:   60 * time.Second,
		pingPeriod: 50 * time.Second,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Start() {
	c.registry.Register(c.id, c.queue)
	c.logger.Info("New WebSocket connection", zap.String("conn_id", c.id))

	go c.writePump()
	go c.readPump()
}

func (c *Client) teardown() {
	c.registry.Deregister(c.id)
	c.subs.Clear(c.id)
	c.conn.Close()
	c.logger.Info("Connection closed", zap.String("conn_id", c.id))
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

	for {
		header, err := ws.ReadHeader(c.conn)
		if err != nil {
			break
		}

		if header.Length > int64(maxMessageSize) {
			c.logger.Warn("Msg too big", zap.Int64("size", header.Length))
			break
		}

		if !header.Fin {
			c.logger.Warn("Client sent fragmented message (not supported)")
			break
		}

		payload := make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			break
		}

		if header.Masked {
			ws.Cipher(payload, header.Mask, 0)
		}

		if header.OpCode == ws.OpClose {
			break
		}
		if header.OpCode == ws.OpPong {
			c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
			continue
		}

		if header.OpCode == ws.OpText {
			c.handler.HandleMessage(c.id, payload)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.queue.Events():
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.conn.Write(ws.CompiledClose)
				return
			}
			msg, err := json.Marshal(ev)
			if err != nil {
				c.logger.Error("Failed to marshal event",
					zap.String("conn_id", c.id), zap.Error(err))
				continue
			}
			if err := wsutil.WriteServerText(c.conn, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}
