// Package bootstrap wires configuration into a running application graph.
// Both the standalone binaries and the CLI serve/worker commands share it so
// the dependency wiring exists in exactly one place.
package bootstrap

import (
	"github.com/complyhub/gst-sentinel/internal/application/aggregation"
	appassessment "github.com/complyhub/gst-sentinel/internal/application/assessment"
	"github.com/complyhub/gst-sentinel/internal/application/registry"
	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/domain/joblog"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/postgres/repositories"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/database/redis"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/messaging/kafka"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
)

// App holds the wired application graph.
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	DB       *postgres.Connection
	Redis    *redis.Client   // nil when no Redis address is configured
	Producer *kafka.Producer // nil when no Kafka brokers are configured

	Engine     *assessment.Engine
	Registry   *registry.Service
	Assessment *appassessment.Service
	Batch      *appassessment.BatchRunner
	JobRepo    joblog.Repository
}

// NewApp builds the full graph from configuration.  Redis and Kafka are
// optional: leaving their addresses empty yields a degraded but functional
// deployment (no cache, no events).  source tags published events.
func NewApp(cfg *config.Config, logger logging.Logger, source string) (*App, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "gstsentinel",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "building metrics collector")
	}
	metrics := prometheus.NewAppMetrics(collector)

	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Collector: collector,
		Metrics:   metrics,
		DB:        db,
	}

	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(cfg.Redis, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Redis = rc
	}
	if len(cfg.Kafka.Brokers) > 0 {
		app.Producer = kafka.NewProducer(cfg.Kafka, source, logger, metrics)
	}

	engine, err := assessment.NewEngine(PolicyFromConfig(cfg.RiskPolicy))
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Engine = engine

	clientRepo := repositories.NewClientRepository(db, logger, metrics)
	filingRepo := repositories.NewFilingRepository(db, logger, metrics)
	invoiceRepo := repositories.NewInvoiceRepository(db, logger, metrics)
	documentRepo := repositories.NewDocumentRepository(db, logger, metrics)
	riskRepo := repositories.NewRiskRepository(db, engine, logger, metrics)
	app.JobRepo = repositories.NewJobLogRepository(db, logger, metrics)

	var cache appassessment.RiskCache
	if app.Redis != nil {
		cache = redis.NewRiskCache(app.Redis, logger, metrics)
	}
	var publisher appassessment.EventPublisher
	if app.Producer != nil {
		publisher = app.Producer
	}

	factors := aggregation.NewAggregator(filingRepo, invoiceRepo, documentRepo, 0, logger)

	app.Registry = registry.NewService(clientRepo, filingRepo, logger)
	app.Assessment = appassessment.NewService(
		engine, factors, riskRepo, clientRepo, cache, publisher, metrics, logger)
	app.Batch = appassessment.NewBatchRunner(app.Assessment, clientRepo, app.JobRepo,
		appassessment.BatchConfig{
			Concurrency:    cfg.Worker.Concurrency,
			MaxRetries:     cfg.Worker.MaxRetries,
			RetryBackoff:   cfg.Worker.RetryBackoff,
			ClientPageSize: cfg.Worker.ClientPageSize,
		}, metrics, logger)

	return app, nil
}

// WatchPolicy hot-reloads the scoring policy when the config file changes.
// Invalid policies are rejected by the engine and logged, keeping the last
// good policy in force.
func (a *App) WatchPolicy(configPath string) {
	if configPath == "" {
		return
	}
	config.Watch(configPath, func(next *config.Config) {
		if err := a.Engine.SetPolicy(PolicyFromConfig(next.RiskPolicy)); err != nil {
			a.Logger.Warn("rejected risk policy from config reload", logging.Err(err))
			return
		}
		a.Logger.Info("risk policy reloaded",
			logging.Int("critical_threshold", next.RiskPolicy.CriticalThreshold),
			logging.Int("warning_threshold", next.RiskPolicy.WarningThreshold))
	})
}

// Close releases infrastructure handles in reverse dependency order.
func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.Logger.Warn("closing kafka producer", logging.Err(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("closing redis client", logging.Err(err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn("closing database connection", logging.Err(err))
		}
	}
}

// PolicyFromConfig maps the configured policy values onto the engine policy.
func PolicyFromConfig(p config.RiskPolicyConfig) assessment.Policy {
	return assessment.Policy{
		FilingTrendWeight:        p.FilingTrendWeight,
		DocumentComplianceWeight: p.DocumentComplianceWeight,
		ITCComplianceWeight:      p.ITCComplianceWeight,
		IncompleteDocPenalty:     p.IncompleteDocPenalty,
		ITCMismatchPenalty:       p.ITCMismatchPenalty,
		OverdueDayPenalty:        p.OverdueDayPenalty,
		CriticalThreshold:        p.CriticalThreshold,
		WarningThreshold:         p.WarningThreshold,
		OverdueFilingsFloor:      p.OverdueFilingsFloor,
	}
}
