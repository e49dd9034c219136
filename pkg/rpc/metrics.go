package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons an inbound message is dropped.
const (
	DropMalformed           = "malformed"
	DropUnknownID           = "unknown_id"
	DropUnknownSubscription = "unknown_subscription"
	DropUnroutable          = "unroutable"
)

// Metrics contains the Prometheus metrics of a Client
type Metrics struct {
	RequestsSent    *prometheus.CounterVec
	ResponsesRouted *prometheus.CounterVec
	Notifications   prometheus.Counter
	RPCErrors       *prometheus.CounterVec
	Dropped         *prometheus.CounterVec

	Outstanding   prometheus.Gauge
	Subscriptions prometheus.Gauge
}

// NewMetrics initializes and registers metrics with the default registerer
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry initializes and registers metrics with a custom registry
func NewMetricsWithRegistry(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		RequestsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solrpc_requests_sent_total",
				Help: "The total number of JSON-RPC requests sent",
			},
			[]string{"method", "transport"},
		),
		ResponsesRouted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solrpc_responses_routed_total",
				Help: "The total number of responses delivered to their request",
			},
			[]string{"method"},
		),
		Notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "solrpc_notifications_total",
			Help: "The total number of notifications delivered to a subscription",
		}),
		RPCErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solrpc_rpc_errors_total",
				Help: "The total number of JSON-RPC error objects received",
			},
			[]string{"method"},
		),
		Dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solrpc_dropped_messages_total",
				Help: "The total number of inbound messages dropped without delivery",
			},
			[]string{"reason"},
		),
		Outstanding: factory.NewGauge(prometheus.GaugeOpts{
			Name: "solrpc_outstanding_requests",
			Help: "The current number of requests awaiting a response",
		}),
		Subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "solrpc_active_subscriptions",
			Help: "The current number of registered subscriptions",
		}),
	}
}
