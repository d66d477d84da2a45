// Package assessment orchestrates the compliance assessment flow: aggregate
// factors, run the scoring engine, persist the record, refresh the cache,
// and publish the completion event.
package assessment

import (
	"context"
	"time"

	domain "github.com/complyhub/gst-sentinel/internal/domain/assessment"
	"github.com/complyhub/gst-sentinel/internal/domain/client"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/logging"
	"github.com/complyhub/gst-sentinel/internal/infrastructure/monitoring/prometheus"
	"github.com/complyhub/gst-sentinel/pkg/errors"
	"github.com/complyhub/gst-sentinel/pkg/types/common"
)

// FactorSource produces the measured factors for one client; implemented by
// the aggregation package.
type FactorSource interface {
	BuildFactors(ctx context.Context, clientID common.ID, asOf time.Time) (domain.RiskFactorSet, error)
}

// RiskCache is the read-side cache of the latest record per client.
type RiskCache interface {
	GetRecord(ctx context.Context, clientID string) (*domain.ClientRiskRecord, error)
	SetRecord(ctx context.Context, record *domain.ClientRiskRecord) error
	InvalidateRecord(ctx context.Context, clientID string) error
}

// CompletedEvent is the payload published after every persisted assessment.
type CompletedEvent struct {
	ClientID         string                  `json:"client_id"`
	RiskScore        int                     `json:"risk_score"`
	ComplianceStatus domain.ComplianceStatus `json:"compliance_status"`
	PreviousScore    *int                    `json:"previous_score,omitempty"`
	AssessedAt       time.Time               `json:"assessed_at"`
	AssessedBy       string                  `json:"assessed_by"`
}

// EventPublisher pushes assessment lifecycle events to the message bus.
type EventPublisher interface {
	PublishAssessmentCompleted(ctx context.Context, event CompletedEvent) error
}

// Service runs single-client assessments and serves risk reads.
type Service struct {
	engine     *domain.Engine
	factors    FactorSource
	riskRepo   domain.Repository
	clientRepo client.Repository
	cache      RiskCache
	publisher  EventPublisher
	metrics    *prometheus.AppMetrics
	logger     logging.Logger
	locks      *clientMutex
	now        func() time.Time
}

// NewService wires the assessment service.  cache and publisher may be nil
// in degraded deployments; persistence is mandatory.
func NewService(
	engine *domain.Engine,
	factors FactorSource,
	riskRepo domain.Repository,
	clientRepo client.Repository,
	cache RiskCache,
	publisher EventPublisher,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
) *Service {
	if metrics == nil {
		metrics = prometheus.NewNopMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		engine:     engine,
		factors:    factors,
		riskRepo:   riskRepo,
		clientRepo: clientRepo,
		cache:      cache,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger.Named("assessment"),
		locks:      newClientMutex(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// AssessClient runs one full assessment for the client and returns the
// persisted record.  Inactive clients are rejected with ErrCodeClientInactive.
func (s *Service) AssessClient(ctx context.Context, clientID common.ID, assessedBy string) (*domain.ClientRiskRecord, error) {
	start := s.now()

	c, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		s.observe(start, "", "error")
		return nil, err
	}
	if !c.Assessable() {
		s.observe(start, "", "error")
		return nil, errors.Newf(errors.ErrCodeClientInactive,
			"client %s is %s and cannot be assessed", clientID, c.Status)
	}

	// Serialize the read-modify-write per client: two concurrent runs must
	// not both capture the same previous score.
	release := s.locks.lock(clientID.String())
	defer release()

	factors, err := s.factors.BuildFactors(ctx, clientID, start)
	if err != nil {
		s.observe(start, "", "error")
		return nil, err
	}

	previous, err := s.riskRepo.FindByClientID(ctx, clientID.String())
	if err != nil && !errors.IsNotFound(err) {
		s.observe(start, "", "error")
		return nil, err
	}

	result := s.engine.Assess(domain.Input{
		ClientID:   clientID.String(),
		Factors:    factors,
		Previous:   previous,
		AssessedBy: assessedBy,
		Now:        s.now(),
	})
	for _, w := range result.Warnings {
		s.metrics.ClampWarningsTotal.WithLabelValues().Inc()
		s.logger.Warn("data-quality: factor clamped",
			logging.String("client_id", clientID.String()),
			logging.String("warning", w),
		)
	}
	record := result.Record

	if err := s.riskRepo.Upsert(ctx, record); err != nil {
		s.observe(start, "", "error")
		return nil, err
	}
	s.refreshCache(ctx, record)
	s.publishCompleted(ctx, record)

	s.observe(start, string(record.ComplianceStatus), "ok")
	s.metrics.RiskScoreLast.WithLabelValues(string(record.ComplianceStatus)).
		Set(float64(record.RiskScore))
	s.logger.Info("client assessed",
		logging.String("client_id", clientID.String()),
		logging.Int("risk_score", record.RiskScore),
		logging.String("status", string(record.ComplianceStatus)),
		logging.String("assessed_by", assessedBy),
	)
	return record, nil
}

// GetRisk returns the latest risk record for the client, cache-first.
func (s *Service) GetRisk(ctx context.Context, clientID common.ID) (*domain.ClientRiskRecord, error) {
	// Cache hit and miss counters live in the cache implementation, so the
	// fall-through here stays metric-free.
	if s.cache != nil {
		record, err := s.cache.GetRecord(ctx, clientID.String())
		if err == nil && record != nil {
			return record, nil
		}
		if err != nil && !errors.IsNotFound(err) {
			s.logger.Warn("risk cache read failed",
				logging.String("client_id", clientID.String()), logging.Err(err))
		}
	}

	record, err := s.riskRepo.FindByClientID(ctx, clientID.String())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRecord(ctx, record); err != nil {
			s.logger.Warn("risk cache backfill failed",
				logging.String("client_id", clientID.String()), logging.Err(err))
		}
	}
	return record, nil
}

// refreshCache replaces the cached record.  Cache faults are logged, never
// surfaced: the database already holds the truth.
func (s *Service) refreshCache(ctx context.Context, record *domain.ClientRiskRecord) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRecord(ctx, record.ClientID); err != nil {
		s.logger.Warn("risk cache invalidation failed",
			logging.String("client_id", record.ClientID), logging.Err(err))
		return
	}
	if err := s.cache.SetRecord(ctx, record); err != nil {
		s.logger.Warn("risk cache refresh failed",
			logging.String("client_id", record.ClientID), logging.Err(err))
	}
}

// publishCompleted emits the completion event.  Publish faults are logged,
// never surfaced: consumers reconcile from the store on gaps.
func (s *Service) publishCompleted(ctx context.Context, record *domain.ClientRiskRecord) {
	if s.publisher == nil {
		return
	}
	event := CompletedEvent{
		ClientID:         record.ClientID,
		RiskScore:        record.RiskScore,
		ComplianceStatus: record.ComplianceStatus,
		PreviousScore:    record.PreviousRiskScore,
		AssessedAt:       record.LastAssessedAt,
		AssessedBy:       record.AssessedBy,
	}
	if err := s.publisher.PublishAssessmentCompleted(ctx, event); err != nil {
		s.logger.Error("assessment event publish failed",
			logging.String("client_id", record.ClientID), logging.Err(err))
	}
}

func (s *Service) observe(start time.Time, status, outcome string) {
	if status == "" {
		status = "none"
	}
	s.metrics.AssessmentsTotal.WithLabelValues(status, outcome).Inc()
	s.metrics.AssessmentDuration.WithLabelValues().Observe(s.now().Sub(start).Seconds())
}
