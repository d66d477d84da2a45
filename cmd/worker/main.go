// Background worker entry point for gst-sentinel: runs the scheduled batch
// compliance checks and consumes on-demand check requests from Kafka.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/complyhub/gst-sentinel/internal/bootstrap"
	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, usedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting gst-sentinel worker",
		logging.Duration("schedule_every", cfg.Worker.ScheduleEvery),
		logging.String("config", usedPath))

	app, err := bootstrap.NewApp(cfg, logger, "gstsentinel-worker")
	if err != nil {
		logger.Error("failed to wire application", logging.Err(err))
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunWorker(ctx, usedPath, app); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("worker exited with error", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// loadConfig reads the named file, falling back to environment-only
// configuration when the default file does not exist.
func loadConfig(path string) (*config.Config, string, error) {
	if _, err := os.Stat(path); err != nil {
		if path != defaultConfigPath {
			return nil, "", fmt.Errorf("config file not found: %s", path)
		}
		cfg, err := config.LoadFromEnv()
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}
