package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

const jsonRPCVersion = "2.0"

// envelope is the outbound JSON-RPC 2.0 request object.
type envelope struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  Method `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

func marshalEnvelope(id uint64, method Method, params []any) ([]byte, error) {
	return json.Marshal(envelope{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	})
}

// Response is one inbound JSON document: a direct response carrying an
// id, or a push notification carrying params.subscription.
type Response struct {
	doc gjson.Result
}

// ParseResponse validates data and wraps it for path lookups.
func ParseResponse(data []byte) (*Response, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedResponse)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}
	return &Response{doc: doc}, nil
}

// HasID reports whether the document carries an id field at all.
// Such documents are direct responses even if the id is unusable.
func (r *Response) HasID() bool {
	return r.doc.Get("id").Exists()
}

// ID returns the request id. ok is false for a missing, null or
// non-numeric id.
func (r *Response) ID() (id uint64, ok bool) {
	v := r.doc.Get("id")
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Uint(), true
}

// SubscriptionID returns params.subscription of a notification.
func (r *Response) SubscriptionID() (uint64, bool) {
	v := r.doc.Get("params.subscription")
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Uint(), true
}

// Error returns the JSON-RPC error object, or nil. For notifications the
// error is looked up under params.
func (r *Response) Error() *Error {
	e := r.doc.Get("error")
	if !e.Exists() {
		e = r.doc.Get("params.error")
	}
	if !e.IsObject() {
		return nil
	}
	return &Error{
		Code:    int(e.Get("code").Int()),
		Message: e.Get("message").String(),
	}
}

// Result returns the raw result of a direct response, nil when absent.
func (r *Response) Result() json.RawMessage {
	return rawOf(r.doc.Get("result"))
}

// NotificationResult returns the raw params.result of a notification.
func (r *Response) NotificationResult() json.RawMessage {
	return rawOf(r.doc.Get("params.result"))
}

// Method returns the notification method name, if present.
func (r *Response) Method() string {
	return r.doc.Get("method").String()
}

func (r *Response) String() string {
	return r.doc.Raw
}

func rawOf(v gjson.Result) json.RawMessage {
	if !v.Exists() {
		return nil
	}
	return json.RawMessage(v.Raw)
}
