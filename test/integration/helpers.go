// Package integration holds tests that exercise the full stack against real
// infrastructure.  They are skipped unless GSTSENTINEL_INTEGRATION_TEST=1 and
// the service URLs below point at reachable instances.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/complyhub/gst-sentinel/internal/bootstrap"
	"github.com/complyhub/gst-sentinel/internal/config"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
)

const (
	// envEnabled gates the whole package.
	envEnabled = "GSTSENTINEL_INTEGRATION_TEST"

	// envPostgresHost et al. override the local-stack defaults.
	envPostgresHost = "GSTSENTINEL_TEST_POSTGRES_HOST"
	envPostgresPort = "GSTSENTINEL_TEST_POSTGRES_PORT"
	envRedisAddr    = "GSTSENTINEL_TEST_REDIS_ADDR"
)

// skipUnlessEnabled skips the test unless integration testing is switched on.
func skipUnlessEnabled(t *testing.T) {
	t.Helper()
	if os.Getenv(envEnabled) != "1" {
		t.Skipf("integration tests disabled; set %s=1 to run", envEnabled)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newTestApp wires the application graph against the test infrastructure.
// Kafka is left unconfigured: event publishing is optional and the batch
// path is fully exercised without it.
func newTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	skipUnlessEnabled(t)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	cfg.Database.Host = envOr(envPostgresHost, "localhost")
	if port := os.Getenv(envPostgresPort); port != "" {
		fmt.Sscanf(port, "%d", &cfg.Database.Port)
	}
	cfg.Database.User = envOr("GSTSENTINEL_TEST_POSTGRES_USER", "gstsentinel")
	cfg.Database.Password = envOr("GSTSENTINEL_TEST_POSTGRES_PASSWORD", "gstsentinel")
	cfg.Database.DBName = envOr("GSTSENTINEL_TEST_POSTGRES_DB", "gstsentinel_test")
	cfg.Database.MigrationsDir = "../../migrations"
	cfg.Redis.Addr = os.Getenv(envRedisAddr)
	cfg.Kafka.Brokers = nil

	logger := logging.NewNopLogger()

	app, err := bootstrap.NewApp(cfg, logger, "integration-test")
	if err != nil {
		t.Fatalf("failed to wire test app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

// testContext returns a context bounded to keep a wedged test from hanging
// the suite.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
