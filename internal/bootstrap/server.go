package bootstrap

import (
	"context"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	httpserver "github.com/complyhub/gst-sentinel/internal/interfaces/http"
	"github.com/complyhub/gst-sentinel/internal/interfaces/http/handlers"
	"github.com/complyhub/gst-sentinel/internal/interfaces/http/middleware"
)

// NewServerFromApp assembles the route tree and HTTP server over the app
// graph.
func NewServerFromApp(app *App) *httpserver.Server {
	checks := []handlers.DependencyCheck{
		{Name: "postgres", Check: app.DB.HealthCheck},
	}
	if app.Redis != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Check: app.Redis.Ping})
	}

	router := httpserver.NewRouter(httpserver.RouterConfig{
		ClientHandler: handlers.NewClientHandler(app.Registry, app.Logger),
		RiskHandler:   handlers.NewRiskHandler(app.Assessment, app.Batch, app.Logger),
		JobHandler:    handlers.NewJobHandler(app.JobRepo, app.Logger),
		HealthHandler: handlers.NewHealthHandler(app.Logger, checks...),

		AuthMiddleware:    middleware.NewAuthMiddleware(app.Config.Server.APIToken, app.Logger),
		LoggingMiddleware: middleware.NewLoggingMiddleware(app.Logger),
		MetricsMiddleware: middleware.NewMetricsMiddleware(app.Metrics),

		MetricsHandler: app.Collector.Handler(),
	})

	return httpserver.NewServer(app.Config.Server, router, app.Logger)
}

// RunServer wires the app, starts the API server, and blocks until ctx is
// cancelled or the listener fails.  configPath enables policy hot reload
// when non-empty.
func RunServer(ctx context.Context, configPath string, app *App) error {
	app.WatchPolicy(configPath)

	srv := NewServerFromApp(app)

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("api server starting",
			logging.Int("port", app.Config.Server.Port))
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return srv.Stop(context.Background())
}
