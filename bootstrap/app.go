package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/cradle/component"
	"github.com/kbukum/cradle/config"
	"github.com/kbukum/cradle/httpclient"
	"github.com/kbukum/cradle/logger"
	"github.com/kbukum/cradle/observability"
	"github.com/kbukum/cradle/version"
)

const meterName = "github.com/kbukum/cradle/httpclient"

// Task is the finite unit of work run by RunTask.
type Task func(ctx context.Context, app *App) error

// App owns the lifecycle of a configured client.
type App struct {
	Cfg    *config.Config
	Logger *logger.Logger
	// Client is available once startup has completed.
	Client  *httpclient.Component
	Summary *Summary

	gracefulTimeout time.Duration
	clientOpts      []httpclient.Option
	tracer          *sdktrace.TracerProvider
	meter           *sdkmetric.MeterProvider

	onStart []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it and initializes the logger.
func NewApp(cfg *config.Config, opts ...Option) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	o := resolveOptions(opts)
	app := &App{
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
		clientOpts:      o.clientOpts,
		Summary: &Summary{
			Name:        cfg.Name,
			Version:     version.GetShortVersion(),
			Environment: cfg.Environment,
		},
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
		logger.SetGlobalLogger(o.logger)
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// Request starts a request against the configured server.
// Must be called after startup.
func (a *App) Request() *httpclient.Request {
	return a.Client.Request()
}

// RunTask starts the application, runs task and shuts down. The task
// context is cancelled on SIGINT or SIGTERM.
func (a *App) RunTask(ctx context.Context, task Task) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx, a)

	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()

	clientOpts := append([]httpclient.Option{httpclient.WithLogger(a.Logger)}, a.clientOpts...)
	telemetryOpts, err := a.initTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	clientOpts = append(clientOpts, telemetryOpts...)

	a.Client = httpclient.NewComponent(a.Cfg.Client, a.Cfg.Connection, clientOpts...)
	if err := a.Client.Start(ctx); err != nil {
		return fmt.Errorf("starting %s: %w", a.Client.Name(), err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	health := a.Client.Health(ctx)
	if health.Status != component.StatusHealthy {
		a.Logger.Warn("Ready check reported issues", logger.Fields(
			"component", health.Name,
			"status", string(health.Status),
			"message", health.Message,
		))
	}

	a.Summary.StartupDuration = time.Since(start)
	a.Summary.Components = []ComponentInfo{{Description: a.Client.Describe(), Health: health}}
	a.Summary.Log(a.Logger)
	return nil
}

// initTelemetry starts the configured exporters and returns the client
// options that record into them.
func (a *App) initTelemetry(ctx context.Context) ([]httpclient.Option, error) {
	t := a.Cfg.Telemetry
	a.Summary.Tracing, a.Summary.Metrics = t.Tracing, t.Metrics

	var opts []httpclient.Option
	if t.Tracing {
		tp, err := observability.InitTracer(ctx, t.TracerConfig(a.Cfg.Name, a.Summary.Version, a.Cfg.Environment))
		if err != nil {
			return nil, err
		}
		a.tracer = tp
	}
	if t.Metrics {
		mp, err := observability.InitMeter(ctx, t.MeterConfig(a.Cfg.Name, a.Summary.Version, a.Cfg.Environment))
		if err != nil {
			return nil, err
		}
		a.meter = mp
		metrics, err := observability.NewClientMetrics(mp.Meter(meterName))
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpclient.WithMetrics(metrics))
	}
	return opts, nil
}

// stop runs stop hooks, stops the client and flushes telemetry within the
// graceful timeout.
func (a *App) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("stop", err))
		shutdownErr = err
	}
	if a.Client != nil {
		if err := a.Client.Stop(ctx); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}
	if err := a.shutdownTelemetry(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	return shutdownErr
}

func (a *App) shutdownTelemetry(ctx context.Context) error {
	var firstErr error
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("tracer shutdown: %w", err)
		}
		a.tracer = nil
	}
	if a.meter != nil {
		if err := a.meter.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("meter shutdown: %w", err)
		}
		a.meter = nil
	}
	return firstErr
}
