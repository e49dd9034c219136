package rpc

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erc7824/solrpc/pkg/log"
)

// ClientConfig wires a Client to its transports.
type ClientConfig struct {
	// HTTP carries one-shot calls.
	HTTP Transport
	// Stream carries subscriptions. Optional if none are submitted.
	Stream Transport

	// Logger defaults to a no-op logger.
	Logger log.Logger
	// Metrics defaults to metrics registered with a private registry.
	Metrics *Metrics
}

// Client multiplexes JSON-RPC requests over its transports and routes every
// inbound document back to the request or subscription it belongs to.
//
// Handlers run on the goroutine that delivered the data, outside the
// client's lock, so they may submit further requests.
type Client struct {
	http    Transport
	stream  Transport
	lg      log.Logger
	metrics *Metrics

	mu     sync.Mutex // Protects reg and router
	reg    *registry
	router *subscriptionRouter
}

// NewClient creates a client and registers it as the data handler of both
// transports.
func NewClient(cfg ClientConfig) *Client {
	lg := cfg.Logger
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetricsWithRegistry(prometheus.NewRegistry())
	}

	c := &Client{
		http:    cfg.HTTP,
		stream:  cfg.Stream,
		lg:      lg.WithName("rpc-client"),
		metrics: metrics,
		reg:     newRegistry(),
		router:  newSubscriptionRouter(),
	}
	if c.http != nil {
		c.http.OnData(c.HandleData)
	}
	if c.stream != nil && c.stream != c.http {
		c.stream.OnData(c.HandleData)
	}
	return c
}

// Submit assigns req an id, serializes it and sends it through the
// transport its kind requires. The id is released again if the request
// cannot be sent. A request can be submitted once.
func (c *Client) Submit(ctx context.Context, req Request) (uint64, error) {
	if req == nil {
		return 0, ErrNilRequest
	}

	tr, trName := c.transportFor(req)
	if tr == nil {
		return 0, fmt.Errorf("%w: %s for %s", ErrNoTransport, trName, req.Method())
	}

	c.mu.Lock()
	id := c.reg.acquire(req)
	if !req.bind(c, id) {
		c.reg.release(id)
		c.mu.Unlock()
		return 0, ErrRequestSubmitted
	}
	c.updateGauges()
	c.mu.Unlock()

	data, err := marshalEnvelope(id, req.Method(), req.params())
	if err != nil {
		c.abandon(id, req)
		return 0, fmt.Errorf("%w: %w", ErrMarshalingRequest, err)
	}

	c.lg.Debug("sending request", "id", id, "method", req.Method(), "transport", trName, "payload", string(data))
	c.metrics.RequestsSent.WithLabelValues(req.Method().String(), trName).Inc()

	if err := tr.Send(ctx, data); err != nil {
		c.abandon(id, req)
		c.lg.Warn("failed to send request", "id", id, "method", req.Method(), "error", err)
		return 0, err
	}
	return id, nil
}

// HandleData routes one inbound JSON document. Documents with an id are
// direct responses; documents with params.subscription are notifications.
// Anything unknown or unparsable is dropped.
func (c *Client) HandleData(data []byte) {
	c.lg.Debug("received message", "payload", string(data))

	res, err := ParseResponse(data)
	if err != nil {
		c.drop(DropMalformed, "error", err)
		return
	}

	if res.HasID() {
		c.deliverResponse(res)
		return
	}
	if subID, ok := res.SubscriptionID(); ok {
		c.deliverNotification(subID, res)
		return
	}
	c.drop(DropUnroutable, "method", res.Method())
}

func (c *Client) deliverResponse(res *Response) {
	id, ok := res.ID()

	var req Request
	c.mu.Lock()
	if ok {
		req = c.reg.release(id)
	}
	c.updateGauges()
	c.mu.Unlock()

	if req == nil {
		c.drop(DropUnknownID, "id", id)
		return
	}

	method := req.Method().String()
	if rpcErr := res.Error(); rpcErr != nil {
		c.metrics.RPCErrors.WithLabelValues(method).Inc()
		c.lg.Debug("rpc error", "id", id, "method", method, "code", rpcErr.Code, "message", rpcErr.Message)
	}
	c.metrics.ResponsesRouted.WithLabelValues(method).Inc()

	req.handleResponse(res)
}

func (c *Client) deliverNotification(subID uint64, res *Response) {
	c.mu.Lock()
	s, ok := c.router.lookup(subID)
	c.mu.Unlock()

	if !ok {
		c.drop(DropUnknownSubscription, "subscription", subID)
		return
	}

	c.metrics.Notifications.Inc()
	if s.handleNotification(res) {
		c.DeregisterSubscription(s)
	}
}

// RegisterSubscription makes s receive notifications for its subscription
// id. A subscriber previously holding the id is closed and replaced.
// Closed subscribers are ignored.
func (c *Client) RegisterSubscription(s Subscriber) {
	c.mu.Lock()
	if s.Closed() {
		c.mu.Unlock()
		return
	}
	prev := c.router.add(s)
	c.updateGauges()
	c.mu.Unlock()

	c.lg.Debug("subscription registered", "subscription", s.SubscriptionID(), "method", s.Method())
	if prev != nil {
		prev.close()
		c.lg.Warn("subscription id reused, replacing subscriber", "subscription", s.SubscriptionID())
	}
}

// DeregisterSubscription stops all notifications to s, including a
// subscription still waiting for its initial response. It reports whether s
// was registered.
func (c *Client) DeregisterSubscription(s Subscriber) bool {
	s.close()

	c.mu.Lock()
	removed := c.router.remove(s)
	c.updateGauges()
	c.mu.Unlock()

	if removed {
		c.lg.Debug("subscription removed", "subscription", s.SubscriptionID())
	}
	return removed
}

// Outstanding returns the number of requests awaiting a response.
func (c *Client) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reg.outstanding()
}

// SubscriptionCount returns the number of registered subscriptions.
func (c *Client) SubscriptionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.router.len()
}

// Close closes the transports that can be closed.
func (c *Client) Close() error {
	var firstErr error
	for _, tr := range []Transport{c.http, c.stream} {
		closer, ok := tr.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) transportFor(req Request) (Transport, string) {
	if req.Streaming() {
		return c.stream, "websocket"
	}
	return c.http, "http"
}

func (c *Client) abandon(id uint64, req Request) {
	c.mu.Lock()
	c.reg.releaseIf(id, req)
	c.updateGauges()
	c.mu.Unlock()
}

func (c *Client) drop(reason string, keysAndValues ...any) {
	c.metrics.Dropped.WithLabelValues(reason).Inc()
	c.lg.Debug("dropping message", append([]any{"reason", reason}, keysAndValues...)...)
}

// updateGauges must be called with c.mu held.
func (c *Client) updateGauges() {
	c.metrics.Outstanding.Set(float64(c.reg.outstanding()))
	c.metrics.Subscriptions.Set(float64(c.router.len()))
}
