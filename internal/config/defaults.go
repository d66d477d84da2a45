package config

import "time"

// Default value constants.  Risk-policy defaults mirror the documented scoring
// model; deployments may override them, subject to RiskPolicyConfig.Validate.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 15 * time.Second

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBName         = "gst_sentinel"
	DefaultDBMaxOpenConns = 25
	DefaultDBMaxIdleConns = 10
	DefaultMigrationsDir  = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "gstsentinel:"
	DefaultRedisTTL       = 10 * time.Minute

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "gst-sentinel-worker"

	DefaultWorkerConcurrency    = 8
	DefaultWorkerMaxRetries     = 3
	DefaultWorkerRetryBackoff   = time.Second
	DefaultWorkerScheduleEvery  = time.Hour
	DefaultWorkerClientPageSize = 200
	DefaultWorkerHealthPort     = 8081

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultFilingTrendWeight        = 0.4
	DefaultDocumentComplianceWeight = 0.3
	DefaultITCComplianceWeight      = 0.3
	DefaultIncompleteDocPenalty     = 10.0
	DefaultITCMismatchPenalty       = 5.0
	DefaultOverdueDayPenalty        = 0.5
	DefaultCriticalThreshold        = 70
	DefaultWarningThreshold         = 30
	DefaultOverdueFilingsFloor      = 3
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must be called after unmarshalling and
// before Validate so optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationsDir == "" {
		cfg.Database.MigrationsDir = DefaultMigrationsDir
	}

	// Redis
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}

	// Kafka
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.ProducerRetries == 0 {
		cfg.Kafka.ProducerRetries = 3
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = time.Second
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// Worker
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = DefaultWorkerMaxRetries
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = DefaultWorkerRetryBackoff
	}
	if cfg.Worker.ScheduleEvery == 0 {
		cfg.Worker.ScheduleEvery = DefaultWorkerScheduleEvery
	}
	if cfg.Worker.ClientPageSize == 0 {
		cfg.Worker.ClientPageSize = DefaultWorkerClientPageSize
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// Risk policy
	applyRiskPolicyDefaults(&cfg.RiskPolicy)
}

func applyRiskPolicyDefaults(p *RiskPolicyConfig) {
	if p.FilingTrendWeight == 0 && p.DocumentComplianceWeight == 0 && p.ITCComplianceWeight == 0 {
		p.FilingTrendWeight = DefaultFilingTrendWeight
		p.DocumentComplianceWeight = DefaultDocumentComplianceWeight
		p.ITCComplianceWeight = DefaultITCComplianceWeight
	}
	if p.IncompleteDocPenalty == 0 {
		p.IncompleteDocPenalty = DefaultIncompleteDocPenalty
	}
	if p.ITCMismatchPenalty == 0 {
		p.ITCMismatchPenalty = DefaultITCMismatchPenalty
	}
	if p.OverdueDayPenalty == 0 {
		p.OverdueDayPenalty = DefaultOverdueDayPenalty
	}
	if p.CriticalThreshold == 0 {
		p.CriticalThreshold = DefaultCriticalThreshold
	}
	if p.WarningThreshold == 0 {
		p.WarningThreshold = DefaultWarningThreshold
	}
	if p.OverdueFilingsFloor == 0 {
		p.OverdueFilingsFloor = DefaultOverdueFilingsFloor
	}
}
