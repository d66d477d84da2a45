// Package config defines all configuration structures for the gst-sentinel
// platform.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// APIToken, when non-empty, is required as a Bearer token on /api/v1
	// routes.  Token issuance is out of scope; this is a static guard.
	APIToken string `mapstructure:"api_token"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	AutoOffsetReset string        `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries int           `mapstructure:"producer_retries"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	ScheduleEvery  time.Duration `mapstructure:"schedule_every"`
	ClientPageSize int           `mapstructure:"client_page_size"`
	HealthPort     int           `mapstructure:"health_port"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// RiskPolicyConfig holds the scoring weights, per-unit penalties, and
// classification thresholds for the compliance risk engine.  The values are
// operational policy, not law: they may be tuned per deployment, but must
// keep the classification thresholds monotonic and non-overlapping.
type RiskPolicyConfig struct {
	// Sub-score aggregation weights.  Must sum to 1.0.
	FilingTrendWeight        float64 `mapstructure:"filing_trend_weight"`
	DocumentComplianceWeight float64 `mapstructure:"document_compliance_weight"`
	ITCComplianceWeight      float64 `mapstructure:"itc_compliance_weight"`

	// Per-unit penalties applied when deriving sub-scores.
	IncompleteDocPenalty float64 `mapstructure:"incomplete_doc_penalty"`
	ITCMismatchPenalty   float64 `mapstructure:"itc_mismatch_penalty"`
	OverdueDayPenalty    float64 `mapstructure:"overdue_day_penalty"`

	// Classification thresholds on the aggregate risk score.
	CriticalThreshold int `mapstructure:"critical_threshold"`
	WarningThreshold  int `mapstructure:"warning_threshold"`

	// OverdueFilingsFloor is the overdue-filings count at or above which the
	// status is forced to at least "warning" regardless of the numeric score.
	OverdueFilingsFloor int `mapstructure:"overdue_filings_floor"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.  Every
// infrastructure component and application service reads its settings from
// the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
	RiskPolicy RiskPolicyConfig `mapstructure:"risk_policy"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// weightSumTolerance absorbs float literal noise when checking that the three
// aggregation weights sum to 1.0.
const weightSumTolerance = 1e-9

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.max_open_conns must be ≥ 1, got %d", c.Database.MaxOpenConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be ≥ 1, got %d", c.Worker.Concurrency)
	}
	if c.Worker.MaxRetries < 0 {
		return fmt.Errorf("config: worker.max_retries must be ≥ 0, got %d", c.Worker.MaxRetries)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return c.RiskPolicy.Validate()
}

// Validate checks the risk policy for internal consistency.
func (p *RiskPolicyConfig) Validate() error {
	sum := p.FilingTrendWeight + p.DocumentComplianceWeight + p.ITCComplianceWeight
	if diff := sum - 1.0; diff > weightSumTolerance || diff < -weightSumTolerance {
		return fmt.Errorf("config: risk_policy weights must sum to 1.0, got %v", sum)
	}
	for name, w := range map[string]float64{
		"filing_trend_weight":        p.FilingTrendWeight,
		"document_compliance_weight": p.DocumentComplianceWeight,
		"itc_compliance_weight":      p.ITCComplianceWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("config: risk_policy.%s %v is out of range [0, 1]", name, w)
		}
	}
	if p.IncompleteDocPenalty < 0 || p.ITCMismatchPenalty < 0 || p.OverdueDayPenalty < 0 {
		return fmt.Errorf("config: risk_policy penalties must be ≥ 0")
	}
	if p.WarningThreshold < 0 || p.CriticalThreshold > 100 {
		return fmt.Errorf("config: risk_policy thresholds must lie in [0, 100]")
	}
	// Thresholds must stay monotonic and non-overlapping.
	if p.WarningThreshold >= p.CriticalThreshold {
		return fmt.Errorf("config: risk_policy.warning_threshold (%d) must be < critical_threshold (%d)",
			p.WarningThreshold, p.CriticalThreshold)
	}
	if p.OverdueFilingsFloor < 1 {
		return fmt.Errorf("config: risk_policy.overdue_filings_floor must be ≥ 1, got %d", p.OverdueFilingsFloor)
	}
	return nil
}
