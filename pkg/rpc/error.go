package rpc

import (
	"encoding/json"
	"fmt"
)

// Transport errors
var (
	ErrAlreadyConnected  = fmt.Errorf("already connected")
	ErrNotConnected      = fmt.Errorf("not connected to server")
	ErrConnectionTimeout = fmt.Errorf("websocket connection timeout")
	ErrReadingMessage    = fmt.Errorf("error reading message")
	ErrDialingWebsocket  = fmt.Errorf("error dialing websocket server")
	ErrSendingPing       = fmt.Errorf("error sending ping")
	ErrUnexpectedStatus  = fmt.Errorf("unexpected http status")
)

// Request errors
var (
	ErrNilRequest        = fmt.Errorf("nil request")
	ErrRequestSubmitted  = fmt.Errorf("request already submitted")
	ErrNoTransport       = fmt.Errorf("no transport configured")
	ErrMarshalingRequest = fmt.Errorf("error marshaling request")
	ErrSendingRequest    = fmt.Errorf("error sending request")
)

// Response errors
var (
	// ErrMalformedResponse means a successful-looking response lacked
	// required result fields, usually a node/client version mismatch.
	ErrMalformedResponse = fmt.Errorf("malformed response")
	ErrAccountNotFound   = fmt.Errorf("account not found")
)

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// TransactionError reports that a transaction was processed but failed.
// Raw holds the node's error value verbatim.
type TransactionError struct {
	Raw json.RawMessage
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed: %s", string(e.Raw))
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}
