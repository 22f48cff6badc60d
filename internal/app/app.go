// Package app wires the order service into an HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kit-orders/internal/domain/kit"
	"github.com/xenking/kit-orders/internal/domain/order"
	"github.com/xenking/kit-orders/internal/handler"
	"github.com/xenking/kit-orders/internal/storage/file"
	"github.com/xenking/kit-orders/internal/storage/memory"
	"github.com/xenking/kit-orders/pkg/health"
	"github.com/xenking/kit-orders/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	ctx = zctx.Base(ctx, lg)
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	healthSvc := health.New()
	server, err := newServer(ctx, cfg, healthSvc, m.TracerProvider(), m.MeterProvider())
	if err != nil {
		return err
	}
	healthSvc.Start(ctx, 10*time.Second)
	defer healthSvc.Stop()
	healthSvc.SetReady(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Fail readiness before draining connections.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})

	return g.Wait()
}

// newServer builds the order service and the HTTP server exposing it. Health
// checks are registered on h but not started.
func newServer(
	ctx context.Context,
	cfg *Config,
	h *health.Health,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*http.Server, error) {
	lg := zctx.From(ctx)

	catalog, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	lg.Info("Catalog loaded", zap.Int("kits", catalog.Len()), zap.String("file", cfg.CatalogFile))

	orders := memory.NewOrderRepository()
	if err := registerStoreMetrics(mp, orders); err != nil {
		return nil, err
	}
	orderService, err := order.NewService(catalog, orders,
		order.WithMeterProvider(mp),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	h.AddReadinessCheck("catalog", time.Second, health.NotEmptyCheck("catalog", catalog.Len))
	h.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", h.LiveEndpoint)
	mux.HandleFunc("GET /readyz", h.ReadyEndpoint)
	handler.NewHandler(orderService).Register(mux)

	return &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           httpmiddleware.Wrap(mux, middlewares(ctx, cfg, lg, tp, mp)...),
	}, nil
}

// middlewares returns the server chain, outermost first. Recovery sits inside
// InjectLogger so recovered panics reach the request logger.
func middlewares(
	ctx context.Context,
	cfg *Config,
	lg *zap.Logger,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) []httpmiddleware.Middleware {
	return []httpmiddleware.Middleware{
		httpmiddleware.RequestID(),
		httpmiddleware.Instrument("kit-orders", tp, mp),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.LogRequests(),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
	}
}

// registerStoreMetrics exports the number of orders held by orders.
func registerStoreMetrics(mp metric.MeterProvider, orders *memory.OrderRepository) error {
	meter := mp.Meter("github.com/xenking/kit-orders/internal/app")
	if _, err := meter.Int64ObservableGauge("orders.stored",
		metric.WithDescription("Number of orders held in memory"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(orders.Len()))
			return nil
		}),
	); err != nil {
		return errors.Wrap(err, "create stored orders gauge")
	}
	return nil
}

func loadCatalog(path string) (*kit.Catalog, error) {
	if path == "" {
		return kit.DefaultCatalog(), nil
	}
	catalog, err := file.LoadCatalog(path)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	return catalog, nil
}
