package rpc

import (
	"encoding/json"
	"sync/atomic"
)

// Handler receives the outcome of a request. err is a *Error for JSON-RPC
// error objects, wraps ErrMalformedResponse when result fields are missing,
// and is nil on success.
type Handler[T any] func(result T, err error)

// Request is one outstanding JSON-RPC call. The variant set is closed: only
// the constructors of this package produce Requests.
type Request interface {
	// ID is the correlation id assigned by Client.Submit, 0 before.
	ID() uint64
	Method() Method
	// Streaming reports whether the call needs the persistent connection.
	Streaming() bool
	// ErrorCode and ErrorMessage hold the JSON-RPC error object, if the
	// node returned one.
	ErrorCode() int
	ErrorMessage() string
	// Err is the error passed to the handler, nil before completion.
	Err() error

	params() []any
	bind(c *Client, id uint64) bool
	handleResponse(res *Response)
}

// Subscriber is a Request that stays routable after its initial response
// until the node stops sending notifications for it.
type Subscriber interface {
	Request
	// SubscriptionID is the server-assigned id, 0 until the subscribe call
	// returns.
	SubscriptionID() uint64
	// Closed reports whether the subscriber stopped accepting notifications.
	Closed() bool

	handleNotification(res *Response) (remove bool)
	close() bool
}

var (
	_ Request    = (*Call[Health])(nil)
	_ Subscriber = (*Subscription[SignatureStatus])(nil)
)

// Call is a one-shot request whose result decodes into T.
//
// Result and error fields are written once by the delivering goroutine
// before the handler runs; read them from the handler or after it returned.
type Call[T any] struct {
	spec    *methodSpec[T]
	args    []any
	handler Handler[T]

	id     uint64
	client *Client
	rpcErr *Error
	err    error
	result T
}

func newCall[T any](spec *methodSpec[T], args []any, h Handler[T]) Call[T] {
	return Call[T]{spec: spec, args: args, handler: h}
}

func (c *Call[T]) ID() uint64      { return c.id }
func (c *Call[T]) Method() Method  { return c.spec.method }
func (c *Call[T]) Streaming() bool { return c.spec.streaming }
func (c *Call[T]) Err() error      { return c.err }

// Result returns the decoded result; the zero value until success.
func (c *Call[T]) Result() T { return c.result }

func (c *Call[T]) ErrorCode() int {
	if c.rpcErr == nil {
		return 0
	}
	return c.rpcErr.Code
}

func (c *Call[T]) ErrorMessage() string {
	if c.rpcErr == nil {
		return ""
	}
	return c.rpcErr.Message
}

func (c *Call[T]) params() []any { return c.args }

func (c *Call[T]) bind(client *Client, id uint64) bool {
	if c.client != nil {
		return false
	}
	c.client = client
	c.id = id
	return true
}

func (c *Call[T]) handleResponse(res *Response) {
	if c.failOnError(res) {
		return
	}
	c.finish(c.spec.decodeResult(res.Result()))
}

// failOnError delivers a JSON-RPC error object, if res has one. No result
// fields are extracted in that case.
func (c *Call[T]) failOnError(res *Response) bool {
	rpcErr := res.Error()
	if rpcErr == nil {
		return false
	}
	c.rpcErr = rpcErr
	var zero T
	c.finish(zero, rpcErr)
	return true
}

func (c *Call[T]) finish(result T, err error) {
	c.result = result
	c.err = err
	if c.handler != nil {
		c.handler(result, err)
	}
}

// Subscription is a streaming request. Its initial response carries a
// subscription id; the node then pushes notifications decoded into T.
type Subscription[T any] struct {
	Call[T]

	subID  atomic.Uint64
	closed atomic.Bool
}

func newSubscription[T any](spec *methodSpec[T], args []any, h Handler[T]) *Subscription[T] {
	return &Subscription[T]{Call: newCall(spec, args, h)}
}

func (s *Subscription[T]) SubscriptionID() uint64 { return s.subID.Load() }

// Closed reports whether the subscription was deregistered or finished.
func (s *Subscription[T]) Closed() bool { return s.closed.Load() }

func (s *Subscription[T]) handleResponse(res *Response) {
	if s.failOnError(res) {
		s.closed.Store(true)
		return
	}

	subID, err := decodeSubscriptionID(res.Result())
	if err != nil {
		s.closed.Store(true)
		var zero T
		s.finish(zero, err)
		return
	}
	s.subID.Store(subID)
	s.client.RegisterSubscription(s)
}

func (s *Subscription[T]) handleNotification(res *Response) bool {
	if s.closed.Load() {
		return true
	}
	if s.failOnError(res) {
		return true
	}

	result, remove, err := s.spec.decodeNotification(res.NotificationResult())
	if remove {
		s.closed.Store(true)
	}
	s.finish(result, err)
	return remove
}

// close marks the subscription finished. It returns false if it already was.
func (s *Subscription[T]) close() bool {
	return s.closed.CompareAndSwap(false, true)
}

func decodeSubscriptionID(raw json.RawMessage) (uint64, error) {
	if len(raw) == 0 {
		return 0, malformedf("missing subscription id")
	}
	var id uint64
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, malformedf("subscription id: %v", err)
	}
	return id, nil
}
