package rpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/erc7824/solrpc/pkg/log"
)

// wsConn holds the connection context and resources
type wsConn struct {
	ctx    context.Context    // Connection context for lifecycle management
	cancel context.CancelFunc // Tears the connection down
	conn   *websocket.Conn
	lg     log.Logger
}

// WebsocketTransportConfig contains configuration options for WebsocketTransport
type WebsocketTransportConfig struct {
	// HandshakeTimeout is the duration to wait for the WebSocket handshake to complete
	HandshakeTimeout time.Duration

	// PingInterval is how often to send ping control frames to keep the connection alive
	PingInterval time.Duration

	// WriteTimeout bounds a single frame write, pings included
	WriteTimeout time.Duration
}

// DefaultWebsocketTransportConfig provides sensible defaults for WebSocket connections
var DefaultWebsocketTransportConfig = WebsocketTransportConfig{
	HandshakeTimeout: 5 * time.Second,
	PingInterval:     15 * time.Second,
	WriteTimeout:     10 * time.Second,
}

// WebsocketTransport is the streaming Transport. Every text frame read from
// the node is passed to the DataHandler from a single read goroutine, in
// arrival order.
type WebsocketTransport struct {
	cfg     WebsocketTransportConfig
	wsConn  *wsConn
	handler DataHandler
	mu      sync.RWMutex // Protects wsConn and handler
	writeMu sync.Mutex   // Serializes WebSocket write operations
}

var (
	_ Transport = (*WebsocketTransport)(nil)
	_ Transport = (*HTTPTransport)(nil)
)

// NewWebsocketTransport creates a new WebSocket transport with the given configuration
func NewWebsocketTransport(cfg WebsocketTransportConfig) *WebsocketTransport {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = DefaultWebsocketTransportConfig.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWebsocketTransportConfig.WriteTimeout
	}
	return &WebsocketTransport{cfg: cfg}
}

// Dial establishes a WebSocket connection to the specified URL and returns
// once the handshake is done. Three background goroutines follow:
// - One to close the connection on context cancellation
// - One to read incoming frames
// - One to send periodic pings
//
// handleClosure is invoked once all of them have exited, with the first
// error encountered, if any.
func (t *WebsocketTransport) Dial(parentCtx context.Context, url string, handleClosure func(err error)) error {
	if t.IsConnected() {
		return ErrAlreadyConnected
	}

	dialer := websocket.Dialer{
		HandshakeTimeout:  t.cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, _, err := dialer.DialContext(parentCtx, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDialingWebsocket, err)
	}

	childCtx, cancel := context.WithCancel(parentCtx)
	wg := sync.WaitGroup{}
	wg.Add(3)

	var closureErr error
	var closureErrMu sync.Mutex
	childHandleClosure := func(err error) {
		closureErrMu.Lock()
		defer closureErrMu.Unlock()

		if err != nil && closureErr == nil {
			closureErr = err
		}

		cancel()
		wg.Done()
	}

	lg := log.FromContext(parentCtx).WithName("ws-transport").WithKV("conn", uuid.NewString())
	c := &wsConn{
		ctx:    childCtx,
		cancel: cancel,
		conn:   conn,
		lg:     lg,
	}

	t.mu.Lock()
	t.wsConn = c
	t.mu.Unlock()
	lg.Info("connected", "url", url)

	go t.closeOnContextDone(c, childHandleClosure)
	go t.readMessages(c, childHandleClosure)
	go t.pingPeriodically(c, childHandleClosure)

	go func() {
		wg.Wait()

		closureErrMu.Lock()
		defer closureErrMu.Unlock()

		if handleClosure != nil {
			handleClosure(closureErr)
		}
	}()

	return nil
}

// IsConnected returns true if the transport has an active connection
func (t *WebsocketTransport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.wsConn != nil && t.wsConn.ctx.Err() == nil
}

func (t *WebsocketTransport) OnData(handler DataHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler = handler
}

// Send writes data as one text frame.
func (t *WebsocketTransport) Send(ctx context.Context, data []byte) error {
	t.mu.RLock()
	c := t.wsConn
	t.mu.RUnlock()
	if c == nil || c.ctx.Err() != nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(t.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	return nil
}

// Close tears down the active connection, if any.
func (t *WebsocketTransport) Close() error {
	t.mu.RLock()
	c := t.wsConn
	t.mu.RUnlock()
	if c != nil {
		c.cancel()
	}
	return nil
}

// closeOnContextDone waits for the context to be done and then closes the connection
func (t *WebsocketTransport) closeOnContextDone(c *wsConn, handleClosure func(err error)) {
	<-c.ctx.Done()

	t.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	t.writeMu.Unlock()

	handleClosure(c.conn.Close())
}

// readMessages continuously reads frames from the connection and hands
// them to the data handler
func (t *WebsocketTransport) readMessages(c *wsConn, handleClosure func(err error)) {
	for {
		msgType, messageBytes, err := c.conn.ReadMessage()
		if c.ctx.Err() != nil {
			handleClosure(nil)
			c.lg.Info("Websocket read loop exiting due to context done")
			return
		} else if _, ok := err.(net.Error); ok {
			handleClosure(fmt.Errorf("%w: %w", ErrConnectionTimeout, err))
			c.lg.Error("Websocket connection timeout", "error", err)
			return
		} else if err != nil {
			handleClosure(fmt.Errorf("%w: %w", ErrReadingMessage, err))
			c.lg.Error("Websocket read error", "error", err)
			return
		}

		if msgType != websocket.TextMessage {
			c.lg.Debug("Ignoring non-text frame", "type", msgType)
			continue
		}

		t.mu.RLock()
		handler := t.handler
		t.mu.RUnlock()
		if handler != nil {
			handler(messageBytes)
		}
	}
}

// pingPeriodically sends ping control frames at regular intervals
func (t *WebsocketTransport) pingPeriodically(c *wsConn, handleClosure func(err error)) {
	ticker := time.NewTicker(t.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			handleClosure(nil)
			c.lg.Info("Ping loop exiting due to context done")
			return
		case <-ticker.C:
			t.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(t.cfg.WriteTimeout))
			t.writeMu.Unlock()
			if err != nil {
				handleClosure(fmt.Errorf("%w: %w", ErrSendingPing, err))
				c.lg.Error("Error sending ping", "error", err)
				return
			}
		}
	}
}
