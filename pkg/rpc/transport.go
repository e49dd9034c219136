package rpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/erc7824/solrpc/pkg/log"
)

// DataHandler receives every inbound JSON document of a transport.
type DataHandler func(data []byte)

// Transport carries serialized envelopes to the node.
//
// One-shot transports deliver the response to the DataHandler before Send
// returns; streaming transports deliver it later from their read loop.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	OnData(handler DataHandler)
}

// HTTPTransportConfig contains configuration options for HTTPTransport
type HTTPTransportConfig struct {
	URL string
	// Timeout bounds one POST including reading the response body.
	Timeout time.Duration
}

// DefaultHTTPTransportConfig returns sensible defaults for HTTPTransport
var DefaultHTTPTransportConfig = HTTPTransportConfig{
	Timeout: 30 * time.Second,
}

// HTTPTransport posts each envelope as its own HTTP request and feeds the
// response body back through the DataHandler.
type HTTPTransport struct {
	cfg     HTTPTransportConfig
	client  *http.Client
	handler DataHandler
	lg      log.Logger
}

func NewHTTPTransport(cfg HTTPTransportConfig, lg log.Logger) *HTTPTransport {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	return &HTTPTransport{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		lg:     lg.WithName("http-transport"),
	}
}

func (t *HTTPTransport) OnData(handler DataHandler) {
	t.handler = handler
}

func (t *HTTPTransport) Send(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSendingRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadingMessage, err)
	}

	// Nodes answer JSON-RPC errors with 4xx/5xx and a JSON body; those still
	// reach the request.
	if resp.StatusCode/100 != 2 && !gjson.ValidBytes(body) {
		t.lg.Warn("unexpected http response", "status", resp.StatusCode, "url", t.cfg.URL)
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if t.handler != nil {
		t.handler(body)
	}
	return nil
}
