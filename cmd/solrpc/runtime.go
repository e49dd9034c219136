package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erc7824/solrpc/pkg/journal"
	"github.com/erc7824/solrpc/pkg/log"
	"github.com/erc7824/solrpc/pkg/rpc"
)

const shutdownTimeout = 5 * time.Second

// runtime holds the long-lived objects shared by all commands.
type runtime struct {
	cfg      *Config
	lg       log.Logger
	registry *prometheus.Registry
	client   *rpc.Client
	ws       *rpc.WebsocketTransport
	store    *journal.Store
	metrics  *http.Server
}

func newRuntime(cfg *Config) *runtime {
	lg := log.NewZapLogger(cfg.Log).WithName("solrpc")

	registry := prometheus.NewRegistry()
	httpTr := rpc.NewHTTPTransport(rpc.HTTPTransportConfig{
		URL:     cfg.HTTPURL,
		Timeout: cfg.RequestTimeout,
	}, lg)
	ws := rpc.NewWebsocketTransport(rpc.DefaultWebsocketTransportConfig)

	rt := &runtime{
		cfg:      cfg,
		lg:       lg,
		registry: registry,
		ws:       ws,
		client: rpc.NewClient(rpc.ClientConfig{
			HTTP:    httpTr,
			Stream:  ws,
			Logger:  lg,
			Metrics: rpc.NewMetricsWithRegistry(registry),
		}),
	}

	if cfg.MetricsAddr != "" {
		rt.serveMetrics(cfg.MetricsAddr)
	}
	return rt
}

func (rt *runtime) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	rt.metrics = &http.Server{Addr: addr, Handler: mux}

	go func() {
		rt.lg.Info("serving metrics", "addr", addr)
		if err := rt.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.lg.Error("metrics server failed", "error", err)
		}
	}()
}

// stream connects the websocket transport on first use.
func (rt *runtime) stream(ctx context.Context) error {
	if rt.ws.IsConnected() {
		return nil
	}
	return rt.ws.Dial(log.SetContextLogger(ctx, rt.lg), rt.cfg.WSURL, func(err error) {
		if err != nil {
			rt.lg.Warn("websocket closed", "error", err)
		}
	})
}

// journal opens the transfer journal on first use.
func (rt *runtime) journal() (*journal.Store, error) {
	if rt.store != nil {
		return rt.store, nil
	}
	db, err := journal.Connect(rt.cfg.Database, rt.lg.WithName("journal"))
	if err != nil {
		return nil, err
	}
	rt.store = journal.NewStore(db)
	return rt.store, nil
}

func (rt *runtime) Close() error {
	var errs []error
	if err := rt.client.Close(); err != nil {
		errs = append(errs, err)
	}
	if rt.store != nil {
		if err := rt.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rt.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
