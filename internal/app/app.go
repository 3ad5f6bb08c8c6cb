package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/specialistvlad/buildplan/internal/compiler"
	"github.com/specialistvlad/buildplan/internal/config"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
	"github.com/specialistvlad/buildplan/internal/metrics"
	"github.com/specialistvlad/buildplan/internal/repository"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	config       *Config
	logger       *slog.Logger
	invocationID string
	loader       config.Loader
	prober       repository.Prober
	closeProber  func() error
	metrics      *metrics.PrometheusRecorder
	httpServer   *http.Server
}

// Option customises an App.
type Option func(*App)

// WithProber replaces the HTTP repository prober.
func WithProber(p repository.Prober) Option {
	return func(a *App) {
		a.prober = p
	}
}

// NewApp is the constructor for the main application. Logs go to logW; the
// loader turns description paths into a config.Description.
func NewApp(logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	invocationID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, invocationID, logW)
	logger.Debug("Logger configured successfully.")

	httpProber := repository.NewHTTPProber(cfg.ProbeTimeout)
	a := &App{
		config:       cfg,
		logger:       logger,
		invocationID: invocationID,
		loader:       loader,
		prober:       httpProber,
		closeProber:  httpProber.Close,
		metrics:      metrics.NewPrometheusRecorder(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// InvocationID identifies this run in logs.
func (a *App) InvocationID() string {
	return a.invocationID
}

// Metrics returns the recorder backing the /metrics endpoint.
func (a *App) Metrics() *metrics.PrometheusRecorder {
	return a.metrics
}

// Start launches the health check server when a port is configured.
func (a *App) Start(ctx context.Context) error {
	return a.startHealthcheckServer(a.withLogger(ctx))
}

// Close shuts down the health check server and releases network resources.
// Failures are logged; the first one is returned.
func (a *App) Close(ctx context.Context) error {
	err := a.closeHealthcheckServer(a.withLogger(ctx))
	if a.closeProber != nil {
		if cerr := a.closeProber(); cerr != nil {
			a.logger.Error("Repository prober close failed", "error", cerr)
			if err == nil {
				err = fmt.Errorf("failed to close repository prober: %w", cerr)
			}
		}
	}
	return err
}

func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) compilerPolicy() compiler.Policy {
	return compiler.Policy{Override: a.config.Incremental}
}
