package rpc_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/erc7824/solrpc/pkg/rpc"
)

// sentEnvelope is the decoded form of an envelope captured by MockTransport.
type sentEnvelope struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      uint64            `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// MockResponder answers a sent envelope with zero or more documents, which
// are delivered in order before Send returns.
type MockResponder func(env sentEnvelope) []string

// Ensure MockTransport implements the Transport interface
var _ rpc.Transport = (*MockTransport)(nil)

// MockTransport records every envelope and optionally answers it
// synchronously, the way HTTPTransport does.
type MockTransport struct {
	mu      sync.Mutex
	sent    []sentEnvelope
	handler rpc.DataHandler

	// Respond, if set, produces the node's answers.
	Respond MockResponder
	// Err, if set, fails every Send.
	Err error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) OnData(handler rpc.DataHandler) {
	m.handler = handler
}

func (m *MockTransport) Send(ctx context.Context, data []byte) error {
	if m.Err != nil {
		return m.Err
	}

	var env sentEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	m.mu.Lock()
	m.sent = append(m.sent, env)
	respond := m.Respond
	m.mu.Unlock()

	if respond != nil {
		for _, doc := range respond(env) {
			m.handler([]byte(doc))
		}
	}
	return nil
}

// Deliver feeds an inbound document to the client.
func (m *MockTransport) Deliver(doc string) {
	m.handler([]byte(doc))
}

// Sent returns the envelopes sent so far.
func (m *MockTransport) Sent() []sentEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentEnvelope(nil), m.sent...)
}

// Last returns the most recent envelope.
func (m *MockTransport) Last(t *testing.T) sentEnvelope {
	t.Helper()

	sent := m.Sent()
	require.NotEmpty(t, sent)
	return sent[len(sent)-1]
}

type testNode struct {
	client  *rpc.Client
	http    *MockTransport
	stream  *MockTransport
	metrics *rpc.Metrics
}

func newTestNode(t *testing.T) *testNode {
	t.Helper()

	n := &testNode{
		http:    NewMockTransport(),
		stream:  NewMockTransport(),
		metrics: rpc.NewMetricsWithRegistry(prometheus.NewRegistry()),
	}
	n.client = rpc.NewClient(rpc.ClientConfig{
		HTTP:    n.http,
		Stream:  n.stream,
		Metrics: n.metrics,
	})
	return n
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}
