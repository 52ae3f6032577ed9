package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/semgloss/config"
	"github.com/c360studio/semgloss/events"
	"github.com/c360studio/semgloss/glossary"
	"github.com/c360studio/semgloss/metrics"
	glossaryapi "github.com/c360studio/semgloss/processor/glossary-api"
	"github.com/c360studio/semgloss/reload"
	"github.com/c360studio/semgloss/storage"
)

// App wires the index, its reload loop and the HTTP surface together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Metrics
	handle   *glossary.Handle
	reloader *reload.Reloader

	// NATS, when configured
	natsPublisher *events.NATSPublisher

	watcher *reload.Watcher
	cancel  context.CancelFunc

	server   *http.Server
	listener net.Listener
	errs     chan error
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &App{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
		handle:   glossary.NewHandle(nil),
		errs:     make(chan error, 1),
	}, nil
}

// Start connects to NATS, builds the first index, starts watching and
// begins serving HTTP. The first build must succeed.
func (a *App) Start(ctx context.Context) error {
	var publisher events.Publisher = events.NopPublisher{}
	if a.cfg.NATS.URL != "" {
		pub, err := events.Connect(a.cfg.NATS.URL, a.cfg.NATS.Subject, a.logger)
		if err != nil {
			return wrapNATSError(err, a.cfg.NATS.URL)
		}
		a.natsPublisher = pub
		publisher = pub
	}

	a.reloader = reload.NewReloader(reload.SourceFromConfig(a.cfg.Vocabulary), a.handle, a.metrics, publisher, a.logger)
	if a.natsPublisher != nil && a.cfg.NATS.SnapshotBucket != "" {
		a.openSnapshots(ctx)
	}

	if _, err := a.reloader.Reload(ctx); err != nil {
		if _, restoreErr := a.reloader.RestoreSnapshot(ctx); restoreErr != nil {
			return fmt.Errorf("initial build: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.cfg.Watch.Enabled {
		w, err := reload.NewWatcher(a.cfg.Vocabulary.Paths, a.cfg.Watch, a.logger)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Start(runCtx); err != nil {
			_ = w.Stop()
			return fmt.Errorf("start watcher: %w", err)
		}
		a.watcher = w
		if err := a.metrics.RegisterDroppedChanges(w.DroppedChanges); err != nil {
			a.logger.Warn("Failed to register watcher metrics", "error", err)
		}
		go a.reloader.Run(runCtx, w)
	}

	listener, err := net.Listen("tcp", a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.HTTP.Addr, err)
	}
	a.listener = listener
	a.server = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errs <- err
		}
	}()
	return nil
}

// openSnapshots enables snapshot storage. On failure snapshots stay disabled.
func (a *App) openSnapshots(ctx context.Context) {
	js, err := jetstream.New(a.natsPublisher.Conn())
	if err != nil {
		a.logger.Warn("JetStream unavailable, snapshots disabled", "error", err)
		return
	}
	store, err := storage.NewStore(ctx, js, a.cfg.NATS.SnapshotBucket)
	if err != nil {
		a.logger.Warn("Snapshot bucket unavailable, snapshots disabled",
			"bucket", a.cfg.NATS.SnapshotBucket, "error", err)
		return
	}
	a.reloader.SetSnapshots(store)
}

// Handler returns the HTTP routes: the glossary API, /metrics and /healthz.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	api := glossaryapi.NewComponent(metrics.NewProber(a.handle, a.metrics), a.logger)
	api.RegisterHTTPHandlers(a.cfg.HTTP.Prefix, mux)

	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", a.handleHealth)
	return mux
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ix := a.handle.Load()
	if ix == nil {
		http.Error(w, "Index not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "ok %s\n", ix.BuildID())
}

// Addr returns the address the server listens on.
func (a *App) Addr() string {
	if a.listener == nil {
		return a.cfg.HTTP.Addr
	}
	return a.listener.Addr().String()
}

// Errors reports a server that stopped unexpectedly.
func (a *App) Errors() <-chan error {
	return a.errs
}

// Shutdown stops serving and releases every connection.
func (a *App) Shutdown(timeout time.Duration) {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Warn("HTTP shutdown incomplete", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher != nil {
		_ = a.watcher.Stop()
	}
	if a.natsPublisher != nil {
		if err := a.natsPublisher.Close(); err != nil {
			a.logger.Warn("NATS drain failed", "error", err)
		}
	}
}

func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

Start NATS, point nats.url at a running server, or leave nats.url empty
to run without rebuild announcements.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
