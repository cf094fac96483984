package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shorturls/internal/adapter/geoip"
	"github.com/vadimbarashkov/shorturls/internal/config"
	"github.com/vadimbarashkov/shorturls/internal/ledger"
	"github.com/vadimbarashkov/shorturls/internal/registry"
	"github.com/vadimbarashkov/shorturls/internal/scheduler"
	"github.com/vadimbarashkov/shorturls/internal/usecase"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/shorturls/internal/adapter/delivery/http"
)

const (
	serviceName = "url-shortener"
	version     = "1.0.0"
)

// App holds the wired components of the service.
type App struct {
	Logger  *httplog.Logger
	UseCase *usecase.URLUseCase
	Handler http.Handler

	closers []func() error
}

// New wires the service components described by cfg.
func New(cfg *config.Config) (*App, error) {
	const op = "app.New"

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger := httplog.NewLogger(serviceName, httplog.Options{
		LogLevel:        cfg.Log.SlogLevel(),
		JSON:            cfg.Log.JSON,
		Concise:         cfg.Log.Concise,
		RequestHeaders:  true,
		TimeFieldFormat: "2006-01-02T15:04:05.000Z07:00",
		Tags: map[string]string{
			"version": version,
			"env":     cfg.Env,
		},
	})

	a := &App{Logger: logger}

	var locator usecase.Locator = geoip.Nop{}
	if cfg.GeoIP.DBPath != "" {
		l, err := geoip.Open(cfg.GeoIP.DBPath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		locator = l
		a.closers = append(a.closers, l.Close)
	}

	a.UseCase = usecase.New(
		registry.New(registry.NanoID(cfg.ShortCodeLength)),
		ledger.New(),
		usecase.WithLocator(locator),
		usecase.WithDefaultValidity(cfg.DefaultValidity),
	)

	a.Handler = delivery.NewRouter(logger, a.UseCase, delivery.RouterOptions{
		Service:           serviceName,
		Version:           version,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		TrustProxy:        cfg.HTTPServer.TrustProxy,
		MaxBodyBytes:      cfg.HTTPServer.MaxBodyBytes,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
	})

	return a, nil
}

// Close releases resources opened by New.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run serves the HTTP API and sweeps expired URLs until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	a, err := New(cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to init app: %w", op, err)
	}
	defer a.Close()

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        a.Handler,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	sweeper := scheduler.NewSweeper(cfg.SweepInterval, a.UseCase.SweepExpired, a.Logger.Logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("starting server",
			slog.String("addr", server.Addr),
			slog.String("env", cfg.Env),
		)

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()

		a.Logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
