package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/complyhub/gst-sentinel/internal/infrastructure/messaging/kafka"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/interfaces/http/handlers"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// RunWorker runs the background worker: a scheduler ticking batch compliance
// checks, an optional Kafka consumer for on-demand check requests, and a
// small health/metrics listener.  It blocks until ctx is cancelled.
func RunWorker(ctx context.Context, configPath string, app *App) error {
	app.WatchPolicy(configPath)

	g, gctx := errgroup.WithContext(ctx)

	if every := app.Config.Worker.ScheduleEvery; every > 0 {
		g.Go(func() error {
			return runScheduler(gctx, app, every)
		})
	} else {
		app.Logger.Warn("scheduler disabled: worker.schedule_every is zero")
	}

	if len(app.Config.Kafka.Brokers) > 0 {
		consumer := kafka.NewCheckRequestConsumer(app.Config.Kafka, app.Batch, app.Logger)
		if err := consumer.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			return consumer.Stop()
		})
	}

	if port := app.Config.Worker.HealthPort; port > 0 {
		g.Go(func() error {
			return runHealthListener(gctx, app, port)
		})
	}

	app.Logger.Info("worker started",
		logging.Duration("schedule_every", app.Config.Worker.ScheduleEvery),
		logging.Int("concurrency", app.Config.Worker.Concurrency))

	return g.Wait()
}

// runScheduler runs one batch compliance check per tick.  An already-running
// job is not an error; everything else is logged and the loop continues.
func runScheduler(ctx context.Context, app *App, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		job, err := app.Batch.Run(ctx, "scheduler")
		switch {
		case err == nil:
			app.Logger.Info("scheduled compliance check completed",
				logging.String("job_id", job.ID.String()),
				logging.Int("processed", job.ProcessedCount),
				logging.Int("failed", job.FailedCount))
		case errors.IsCode(err, errors.ErrCodeJobAlreadyRunning):
			app.Logger.Info("scheduled compliance check skipped: previous run still active")
		default:
			app.Logger.Error("scheduled compliance check failed", logging.Err(err))
		}
	}
}

// runHealthListener exposes liveness, readiness, and metrics for the worker
// process, outside the API server's route tree.
func runHealthListener(ctx context.Context, app *App, port int) error {
	checks := []handlers.DependencyCheck{
		{Name: "postgres", Check: app.DB.HealthCheck},
	}
	if app.Redis != nil {
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Check: app.Redis.Ping})
	}
	health := handlers.NewHealthHandler(app.Logger, checks...)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Liveness)
	mux.HandleFunc("/readyz", health.Readiness)
	mux.Handle("/metrics", app.Collector.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("worker health listener starting", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
